package outcome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordString(t *testing.T) {
	assert.Equal(t, "osbuild: up_to_date", (&Record{Component: "osbuild", Action: ActionUpToDate}).String())
	assert.Equal(t,
		"osbuild: skipped: awaiting checks",
		(&Record{Component: "osbuild", Action: ActionSkipped, Detail: "awaiting checks"}).String(),
	)
}
