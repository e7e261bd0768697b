package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingNotifier struct {
	Noop
	added, started, progress, recordFailed, completed, failed, drained, queueErr int
}

func (c *countingNotifier) JobAdded(string, string)            { c.added++ }
func (c *countingNotifier) JobStarted(string)                  { c.started++ }
func (c *countingNotifier) JobProgress(string, int)            { c.progress++ }
func (c *countingNotifier) RecordFailed(string, string, error) { c.recordFailed++ }
func (c *countingNotifier) JobCompleted(string)                { c.completed++ }
func (c *countingNotifier) JobFailed(string, error)            { c.failed++ }
func (c *countingNotifier) Drained()                           { c.drained++ }
func (c *countingNotifier) QueueError(error)                   { c.queueErr++ }

func TestMultiFansOutToEveryNotifier(t *testing.T) {
	a := &countingNotifier{}
	b := &countingNotifier{}
	m := Multi{a, b}

	m.JobAdded("k1", "upsertVideos-abc")
	m.JobStarted("k1")
	m.JobProgress("k1", 50)
	m.RecordFailed("k1", "v1", errors.New("boom"))
	m.JobCompleted("k1")
	m.JobFailed("k1", errors.New("fatal"))
	m.Drained()
	m.QueueError(errors.New("down"))

	for _, c := range []*countingNotifier{a, b} {
		assert.Equal(t, 1, c.added)
		assert.Equal(t, 1, c.started)
		assert.Equal(t, 1, c.progress)
		assert.Equal(t, 1, c.recordFailed)
		assert.Equal(t, 1, c.completed)
		assert.Equal(t, 1, c.failed)
		assert.Equal(t, 1, c.drained)
		assert.Equal(t, 1, c.queueErr)
	}
}

func TestEmptyMultiIsSafe(t *testing.T) {
	var m Multi

	assert.NotPanics(t, func() {
		m.JobAdded("k", "n")
		m.JobProgress("k", 10)
		m.Drained()
	})
}
