package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/store"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

func setupIntegration(t *testing.T) (*store.Store, context.Context) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "factory_test")

	db := config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	ctx := utils.SetUserNameInContext(context.Background(), "Test")
	return store.New(db), ctx
}

func TestStockEntryUpdatesLedgerAndBalanceTogether(t *testing.T) {
	st, ctx := setupIntegration(t)
	db := st.DB()
	stock := models.NewStockService(st, config.GetLogger())

	item, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "RM-001", Name: "Resin", Uom: "kg", Category: "raw"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	refined, err := models.CreateItem(db, ctx, models.NewItemInput{
		Code: "RM-001R", Name: "Refined resin", Uom: "kg", Category: "raw", SourceItemId: &item.Id,
	})
	if err != nil {
		t.Fatalf("CreateItem refined: %v", err)
	}
	if refined.Category != "raw" || refined.SourceItemId == nil || *refined.SourceItemId != item.Id {
		t.Fatalf("expected category and lineage persisted; got %+v", refined)
	}
	loc, err := models.CreateLocation(db, ctx, models.NewLocationInput{Code: "WH-01", Name: "Main"})
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}

	key := models.BalanceKey{ItemId: item.Id, LocationId: loc.Id, VariantKey: ""}

	// Never-moved bucket reads zero.
	qty, err := stock.GetBalance(ctx, key)
	if err != nil || !qty.IsZero() {
		t.Fatalf("expected zero balance for fresh bucket; got %s, %v", qty, err)
	}

	if _, err := stock.AddStockEntry(ctx, models.StockEntryInput{
		ItemId: item.Id, LocationId: loc.Id,
		Qty: decimal.NewFromInt(100), EntryType: models.EntryTypeReceipt,
		RefType: models.RefTypeManual, RefId: "GRN-1",
	}); err != nil {
		t.Fatalf("AddStockEntry receipt: %v", err)
	}
	if _, err := stock.AddStockEntry(ctx, models.StockEntryInput{
		ItemId: item.Id, LocationId: loc.Id,
		Qty: decimal.NewFromInt(-30), EntryType: models.EntryTypeConsume,
		RefType: models.RefTypeManual, RefId: "ISSUE-1",
	}); err != nil {
		t.Fatalf("AddStockEntry consume: %v", err)
	}

	qty, err = stock.GetBalance(ctx, key)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if !qty.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected balance 70; got %s", qty)
	}

	// Ledger sum and balance row must agree.
	sum, err := models.SumLedgerQty(db, ctx, item.Id, loc.Id, "")
	if err != nil {
		t.Fatalf("SumLedgerQty: %v", err)
	}
	if !sum.Equal(qty) {
		t.Fatalf("ledger sum %s disagrees with balance %s", sum, qty)
	}
}

func TestRejectedEntryLeavesNoLedgerTrace(t *testing.T) {
	st, ctx := setupIntegration(t)
	db := st.DB()
	stock := models.NewStockService(st, config.GetLogger())

	item, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "RM-002", Name: "Pigment", Uom: "kg"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	loc, err := models.CreateLocation(db, ctx, models.NewLocationInput{Code: "WH-02", Name: "Annex"})
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}

	if _, err := stock.AddStockEntry(ctx, models.StockEntryInput{
		ItemId: item.Id, LocationId: loc.Id,
		Qty: decimal.NewFromInt(10), EntryType: models.EntryTypeReceipt,
		RefType: models.RefTypeManual, RefId: "GRN-2",
	}); err != nil {
		t.Fatalf("AddStockEntry receipt: %v", err)
	}

	_, err = stock.AddStockEntry(ctx, models.StockEntryInput{
		ItemId: item.Id, LocationId: loc.Id,
		Qty: decimal.NewFromInt(-11), EntryType: models.EntryTypeConsume,
		RefType: models.RefTypeManual, RefId: "ISSUE-2",
	})
	if !utils.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError; got %v", err)
	}

	// The rejected movement must not have touched ledger or balance.
	entries, err := models.GetLedgerEntries(db, ctx, models.LedgerFilter{ItemId: item.Id, LocationId: loc.Id})
	if err != nil {
		t.Fatalf("GetLedgerEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry after rejection; got %d", len(entries))
	}
	qty, err := stock.GetBalance(ctx, models.BalanceKey{ItemId: item.Id, LocationId: loc.Id})
	if err != nil || !qty.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected balance 10 after rejection; got %s, %v", qty, err)
	}
}

func TestWorkOrderLifecycleMovesStockOnCompletion(t *testing.T) {
	st, ctx := setupIntegration(t)
	db := st.DB()
	stock := models.NewStockService(st, config.GetLogger())
	engine := workflow.NewWorkOrderEngine(st, stock, config.GetLogger(), nil)

	resin, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "RM-010", Name: "Resin", Uom: "kg"})
	if err != nil {
		t.Fatalf("CreateItem resin: %v", err)
	}
	chair, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "FG-010", Name: "Chair", Uom: "pc"})
	if err != nil {
		t.Fatalf("CreateItem chair: %v", err)
	}
	wh, err := models.CreateLocation(db, ctx, models.NewLocationInput{Code: "WH-10", Name: "Raw"})
	if err != nil {
		t.Fatalf("CreateLocation raw: %v", err)
	}
	fg, err := models.CreateLocation(db, ctx, models.NewLocationInput{Code: "FG-10", Name: "Finished"})
	if err != nil {
		t.Fatalf("CreateLocation finished: %v", err)
	}

	color, err := models.CreateAttribute(db, ctx, models.NewAttributeInput{Name: "Color", Values: []string{"Red"}})
	if err != nil {
		t.Fatalf("CreateAttribute: %v", err)
	}
	red := color.Values[0]

	// Seed 100 kg of resin.
	if _, err := stock.AddStockEntry(ctx, models.StockEntryInput{
		ItemId: resin.Id, LocationId: wh.Id,
		Qty: decimal.NewFromInt(100), EntryType: models.EntryTypeReceipt,
		RefType: models.RefTypeManual, RefId: "GRN-10",
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	// 10 kg resin per red chair.
	bom, err := models.CreateBom(db, ctx, models.NewBomInput{
		Code: "BOM-CHAIR", Name: "Chair recipe",
		OutputItemId: chair.Id, Qty: decimal.NewFromInt(1),
		AttributeValueIds: []int{red.Id},
		Lines: []models.NewBomLineInput{
			{ItemId: resin.Id, LineType: models.BomLineTypeAbsolute, Qty: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBom: %v", err)
	}

	order, err := models.CreateWorkOrder(db, ctx, models.NewWorkOrderInput{
		Code: "WO-001", BomId: bom.Id, Qty: decimal.NewFromInt(2),
		SourceLocationId: wh.Id, DestinationLocationId: fg.Id,
	})
	if err != nil {
		t.Fatalf("CreateWorkOrder: %v", err)
	}
	if order.Status != models.WorkOrderStatusPending {
		t.Fatalf("expected PENDING; got %s", order.Status)
	}

	// The order carries the BOM's value set, not a caller-chosen one.
	if order.OutputVariantKey() != models.ResolveVariantKey([]int{red.Id}) {
		t.Fatalf("expected order variant key copied from BOM; got %q", order.OutputVariantKey())
	}

	// Start: validation only, nothing moves.
	order, err = engine.Transition(ctx, order.Id, models.WorkOrderStatusInProgress)
	if err != nil {
		t.Fatalf("Transition IN_PROGRESS: %v", err)
	}
	if order.ActualStartDate == nil {
		t.Fatalf("expected actual start date to be set")
	}
	qty, _ := stock.GetBalance(ctx, models.BalanceKey{ItemId: resin.Id, LocationId: wh.Id})
	if !qty.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("starting must not move stock; got %s kg resin", qty)
	}
	consumes, err := models.GetLedgerEntries(db, ctx, models.LedgerFilter{ItemId: resin.Id, EntryType: models.EntryTypeConsume})
	if err != nil {
		t.Fatalf("GetLedgerEntries: %v", err)
	}
	if len(consumes) != 0 {
		t.Fatalf("starting must not post consume entries; got %d", len(consumes))
	}

	// Complete: consumes 20 kg and produces 2 chairs in one step.
	order, err = engine.Transition(ctx, order.Id, models.WorkOrderStatusCompleted)
	if err != nil {
		t.Fatalf("Transition COMPLETED: %v", err)
	}
	if order.ActualEndDate == nil {
		t.Fatalf("expected actual end date to be set")
	}

	// Both sides visible in one batch read.
	redKey := models.ResolveVariantKey([]int{red.Id})
	balances, err := stock.GetBatchBalances(ctx, []models.BalanceKey{
		{ItemId: resin.Id, LocationId: wh.Id},
		{ItemId: chair.Id, LocationId: fg.Id, VariantKey: redKey},
	})
	if err != nil {
		t.Fatalf("GetBatchBalances: %v", err)
	}
	if got := balances[models.BalanceKey{ItemId: resin.Id, LocationId: wh.Id}]; !got.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected 80 kg resin after completion; got %s", got)
	}
	if got := balances[models.BalanceKey{ItemId: chair.Id, LocationId: fg.Id, VariantKey: redKey}]; !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected 2 red chairs; got %s", got)
	}

	// Movements reference the order by code.
	entries, err := models.GetLedgerEntries(db, ctx, models.LedgerFilter{ItemId: chair.Id})
	if err != nil {
		t.Fatalf("GetLedgerEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].RefType != models.RefTypeWorkOrder || entries[0].RefId != "WO-001" {
		t.Fatalf("expected one produce entry referencing Work Order/WO-001; got %+v", entries)
	}

	// Terminal: no further transitions.
	if _, err := engine.Transition(ctx, order.Id, models.WorkOrderStatusCancelled); !utils.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError from COMPLETED; got %v", err)
	}

	// Audit trail carries both sides of each status change.
	histories, err := models.GetHistories(db, ctx, "work_order", order.Id)
	if err != nil {
		t.Fatalf("GetHistories: %v", err)
	}
	found := false
	for _, h := range histories {
		if strings.Contains(h.Detail, "from IN_PROGRESS to COMPLETED") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a history row recording IN_PROGRESS -> COMPLETED; got %+v", histories)
	}

	// The Red value is now referenced by ledger, balance, BOM and order
	// rows; deleting its attribute must be refused.
	if err := models.DeleteAttribute(db, ctx, color.Id); !utils.IsIntegrityConflict(err) {
		t.Fatalf("expected IntegrityConflictError deleting a referenced attribute; got %v", err)
	}
}

func TestDirectCompletionFromPending(t *testing.T) {
	st, ctx := setupIntegration(t)
	db := st.DB()
	stock := models.NewStockService(st, config.GetLogger())
	engine := workflow.NewWorkOrderEngine(st, stock, config.GetLogger(), nil)

	oak, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "RM-030", Name: "Oak", Uom: "kg"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	table, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "FG-030", Name: "Table", Uom: "pc"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	wh, err := models.CreateLocation(db, ctx, models.NewLocationInput{Code: "WH-30", Name: "Raw"})
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}

	if _, err := stock.AddStockEntry(ctx, models.StockEntryInput{
		ItemId: oak.Id, LocationId: wh.Id,
		Qty: decimal.NewFromInt(50), EntryType: models.EntryTypeReceipt,
		RefType: models.RefTypeManual, RefId: "GRN-30",
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	bom, err := models.CreateBom(db, ctx, models.NewBomInput{
		Code: "BOM-TABLE", Name: "Table recipe",
		OutputItemId: table.Id, Qty: decimal.NewFromInt(1),
		Lines: []models.NewBomLineInput{
			{ItemId: oak.Id, LineType: models.BomLineTypeAbsolute, Qty: decimal.NewFromInt(25)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBom: %v", err)
	}
	order, err := models.CreateWorkOrder(db, ctx, models.NewWorkOrderInput{
		Code: "WO-030", BomId: bom.Id, Qty: decimal.NewFromInt(1),
		SourceLocationId: wh.Id, DestinationLocationId: wh.Id,
	})
	if err != nil {
		t.Fatalf("CreateWorkOrder: %v", err)
	}

	// PENDING -> COMPLETED in one transition posts consumption and
	// production together and stamps both actual dates.
	order, err = engine.Transition(ctx, order.Id, models.WorkOrderStatusCompleted)
	if err != nil {
		t.Fatalf("Transition COMPLETED: %v", err)
	}
	if order.ActualStartDate == nil || order.ActualEndDate == nil {
		t.Fatalf("expected both actual dates set on direct completion")
	}

	oakQty, _ := stock.GetBalance(ctx, models.BalanceKey{ItemId: oak.Id, LocationId: wh.Id})
	if !oakQty.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected 25 kg oak; got %s", oakQty)
	}
	tableQty, _ := stock.GetBalance(ctx, models.BalanceKey{ItemId: table.Id, LocationId: wh.Id})
	if !tableQty.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected 1 table; got %s", tableQty)
	}
}

func TestCancelIsPureStatusFlip(t *testing.T) {
	st, ctx := setupIntegration(t)
	db := st.DB()
	stock := models.NewStockService(st, config.GetLogger())
	engine := workflow.NewWorkOrderEngine(st, stock, config.GetLogger(), nil)

	pine, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "RM-040", Name: "Pine", Uom: "kg"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	shelf, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "FG-040", Name: "Shelf", Uom: "pc"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	wh, err := models.CreateLocation(db, ctx, models.NewLocationInput{Code: "WH-40", Name: "Raw"})
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}

	if _, err := stock.AddStockEntry(ctx, models.StockEntryInput{
		ItemId: pine.Id, LocationId: wh.Id,
		Qty: decimal.NewFromInt(30), EntryType: models.EntryTypeReceipt,
		RefType: models.RefTypeManual, RefId: "GRN-40",
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	bom, err := models.CreateBom(db, ctx, models.NewBomInput{
		Code: "BOM-SHELF", Name: "Shelf recipe",
		OutputItemId: shelf.Id, Qty: decimal.NewFromInt(1),
		Lines: []models.NewBomLineInput{
			{ItemId: pine.Id, LineType: models.BomLineTypeAbsolute, Qty: decimal.NewFromInt(3)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBom: %v", err)
	}
	order, err := models.CreateWorkOrder(db, ctx, models.NewWorkOrderInput{
		Code: "WO-040", BomId: bom.Id, Qty: decimal.NewFromInt(1),
		SourceLocationId: wh.Id, DestinationLocationId: wh.Id,
	})
	if err != nil {
		t.Fatalf("CreateWorkOrder: %v", err)
	}

	if _, err := engine.Transition(ctx, order.Id, models.WorkOrderStatusInProgress); err != nil {
		t.Fatalf("Transition IN_PROGRESS: %v", err)
	}
	order, err = engine.Transition(ctx, order.Id, models.WorkOrderStatusCancelled)
	if err != nil {
		t.Fatalf("Transition CANCELLED: %v", err)
	}
	if order.Status != models.WorkOrderStatusCancelled {
		t.Fatalf("expected CANCELLED; got %s", order.Status)
	}

	// No ledger activity from the whole lifecycle besides the seed.
	entries, err := models.GetLedgerEntries(db, ctx, models.LedgerFilter{ItemId: pine.Id})
	if err != nil {
		t.Fatalf("GetLedgerEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("cancel must not move stock; got %d ledger entries", len(entries))
	}
	qty, _ := stock.GetBalance(ctx, models.BalanceKey{ItemId: pine.Id, LocationId: wh.Id})
	if !qty.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected 30 kg pine untouched; got %s", qty)
	}
}

func TestTransitionRollsBackOnInsufficientStock(t *testing.T) {
	st, ctx := setupIntegration(t)
	db := st.DB()
	stock := models.NewStockService(st, config.GetLogger())
	engine := workflow.NewWorkOrderEngine(st, stock, config.GetLogger(), nil)

	steel, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "RM-020", Name: "Steel", Uom: "kg"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	frame, err := models.CreateItem(db, ctx, models.NewItemInput{Code: "FG-020", Name: "Frame", Uom: "pc"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	wh, err := models.CreateLocation(db, ctx, models.NewLocationInput{Code: "WH-20", Name: "Raw"})
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}

	// Only 5 kg on hand, order needs 10.
	if _, err := stock.AddStockEntry(ctx, models.StockEntryInput{
		ItemId: steel.Id, LocationId: wh.Id,
		Qty: decimal.NewFromInt(5), EntryType: models.EntryTypeReceipt,
		RefType: models.RefTypeManual, RefId: "GRN-20",
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	bom, err := models.CreateBom(db, ctx, models.NewBomInput{
		Code: "BOM-FRAME", Name: "Frame recipe",
		OutputItemId: frame.Id, Qty: decimal.NewFromInt(1),
		Lines: []models.NewBomLineInput{
			{ItemId: steel.Id, LineType: models.BomLineTypeAbsolute, Qty: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBom: %v", err)
	}
	order, err := models.CreateWorkOrder(db, ctx, models.NewWorkOrderInput{
		Code: "WO-020", BomId: bom.Id, Qty: decimal.NewFromInt(1),
		SourceLocationId: wh.Id, DestinationLocationId: wh.Id,
	})
	if err != nil {
		t.Fatalf("CreateWorkOrder: %v", err)
	}

	// Starting fails validation.
	if _, err := engine.Transition(ctx, order.Id, models.WorkOrderStatusInProgress); !utils.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError on start; got %v", err)
	}
	// Completing fails the locked guard and rolls everything back.
	if _, err := engine.Transition(ctx, order.Id, models.WorkOrderStatusCompleted); !utils.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError on completion; got %v", err)
	}

	reloaded, err := models.GetWorkOrder(db, ctx, order.Id)
	if err != nil {
		t.Fatalf("GetWorkOrder: %v", err)
	}
	if reloaded.Status != models.WorkOrderStatusPending {
		t.Fatalf("expected PENDING after failed transitions; got %s", reloaded.Status)
	}
	qty, _ := stock.GetBalance(ctx, models.BalanceKey{ItemId: steel.Id, LocationId: wh.Id})
	if !qty.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected 5 kg after rollback; got %s", qty)
	}
	entries, err := models.GetLedgerEntries(db, ctx, models.LedgerFilter{ItemId: steel.Id, EntryType: models.EntryTypeConsume})
	if err != nil {
		t.Fatalf("GetLedgerEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no consume rows after rollback; got %d", len(entries))
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("factory-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=factory_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
