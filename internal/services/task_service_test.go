package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

func TestCreateTaskDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	task, err := svc.Create(testCtx(), CreateTaskInput{ClientID: profile.ID, Title: "Fix sitemap"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.CategoryOther, task.Category)

	_, err = svc.Create(testCtx(), CreateTaskInput{ClientID: profile.ID})
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}

func TestMarkCompletedDefaultsToday(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	task, err := svc.Create(testCtx(), CreateTaskInput{ClientID: profile.ID, Title: "Fix sitemap"})
	require.NoError(t, err)

	completed, err := svc.MarkCompleted(testCtx(), task.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, completed.Status)
	require.NotNil(t, completed.CompletedDate)
	assert.True(t, completed.CompletedDate.Equal(models.Today()))

	// Reopening clears the completion date.
	reopened, err := svc.MarkInProgress(testCtx(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, reopened.Status)
	assert.Nil(t, reopened.CompletedDate)
}

func TestTaskOverdue(t *testing.T) {
	today := models.NewDate(2026, 9, 1)
	yesterday := models.NewDate(2026, 8, 31)

	open := models.Task{Status: models.TaskPending, DueDate: &yesterday}
	assert.True(t, open.IsOverdue(today))

	done := models.Task{Status: models.TaskCompleted, DueDate: &yesterday}
	assert.False(t, done.IsOverdue(today))

	noDue := models.Task{Status: models.TaskPending}
	assert.False(t, noDue.IsOverdue(today))

	dueToday := models.Task{Status: models.TaskPending, DueDate: &today}
	assert.False(t, dueToday.IsOverdue(today))
}

func TestTaskStats(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	yesterday := models.Today().AddDays(-1)
	_, err := svc.Create(testCtx(), CreateTaskInput{ClientID: profile.ID, Title: "a", DueDate: &yesterday})
	require.NoError(t, err)
	_, err = svc.Create(testCtx(), CreateTaskInput{ClientID: profile.ID, Title: "b", Status: models.TaskInProgress})
	require.NoError(t, err)
	done, err := svc.Create(testCtx(), CreateTaskInput{ClientID: profile.ID, Title: "c"})
	require.NoError(t, err)
	_, err = svc.MarkCompleted(testCtx(), done.ID, nil)
	require.NoError(t, err)

	stats, err := svc.Stats(testCtx(), repository.TaskFilters{ClientID: &profile.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 1, stats.InProgress)
	assert.EqualValues(t, 1, stats.Completed)
	assert.EqualValues(t, 1, stats.Overdue)
}
