package errs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	te := NewTaskError("t1", "failed to compile", cause)
	assert.ErrorIs(t, te, cause)
	assert.Contains(t, te.Error(), "t1")
}

func TestExecutionErrorAggregatesAndUnwraps(t *testing.T) {
	ee := NewExecutionError(PhaseWave)
	ee.TotalTasks = 2
	ee.AddTask(NewTaskError("t1", "bad", nil))
	ee.AddTask(NewTaskError("t2", "bad", nil))

	assert.Equal(t, 2, ee.FailedTasks)
	assert.True(t, IsExecutionError(ee))
	assert.Len(t, ee.Unwrap(), 2)
}

func TestTimeoutErrorUnwrapsToDeadlineExceeded(t *testing.T) {
	te := NewTimeoutError("t1", 0)
	assert.ErrorIs(t, te, context.DeadlineExceeded)
	assert.True(t, IsTimeoutError(te))
}

func TestMergeConflictError(t *testing.T) {
	cause := errors.New("conflict in foo.go")
	me := &MergeConflictError{TaskID: "t1", Retries: 2, Err: cause}
	assert.True(t, IsMergeConflict(me))
	assert.ErrorIs(t, me, cause)
}
