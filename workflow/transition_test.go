package workflow_test

import (
	"testing"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

func TestTransitionTable(t *testing.T) {
	statuses := []string{
		models.WorkOrderStatusPending,
		models.WorkOrderStatusInProgress,
		models.WorkOrderStatusCompleted,
		models.WorkOrderStatusCancelled,
	}

	allowed := map[[2]string]bool{
		{models.WorkOrderStatusPending, models.WorkOrderStatusInProgress}:    true,
		{models.WorkOrderStatusPending, models.WorkOrderStatusCompleted}:     true,
		{models.WorkOrderStatusPending, models.WorkOrderStatusCancelled}:     true,
		{models.WorkOrderStatusInProgress, models.WorkOrderStatusCompleted}:  true,
		{models.WorkOrderStatusInProgress, models.WorkOrderStatusCancelled}:  true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := workflow.CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v; want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	terminals := []string{models.WorkOrderStatusCompleted, models.WorkOrderStatusCancelled}
	targets := []string{
		models.WorkOrderStatusPending,
		models.WorkOrderStatusInProgress,
		models.WorkOrderStatusCompleted,
		models.WorkOrderStatusCancelled,
	}
	for _, from := range terminals {
		for _, to := range targets {
			if workflow.CanTransition(from, to) {
				t.Errorf("terminal status %s must not transition to %s", from, to)
			}
		}
	}
}

func TestParseWorkOrderStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "IN_PROGRESS", "COMPLETED", "CANCELLED"} {
		got, err := models.ParseWorkOrderStatus(s)
		if err != nil || got != s {
			t.Errorf("ParseWorkOrderStatus(%s) = %q, %v", s, got, err)
		}
	}
	for _, s := range []string{"", "pending", "DONE", "IN PROGRESS"} {
		if _, err := models.ParseWorkOrderStatus(s); err == nil {
			t.Errorf("ParseWorkOrderStatus(%q) should fail", s)
		}
	}
}
