package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogListOptions_ZeroValueDefaults(t *testing.T) {
	// ListLogs' query-building branches are exercised indirectly through
	// integration tests against a live database; this guards the pure
	// option defaults the handlers layer relies on.
	var opts LogListOptions
	assert.Equal(t, 0, opts.Limit)
	assert.Equal(t, 0, opts.Offset)
	assert.Equal(t, "", opts.Type)
}
