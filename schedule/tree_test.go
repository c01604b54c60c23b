package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTreeReadsMoreUrgentChild(t *testing.T) {
	left := NewConstant(Continue)
	right := NewAtomicFlag()
	tr := NewTree(left, right)

	assert.Equal(t, Continue, tr.Read())

	right.Set()
	assert.Equal(t, MustReseed, tr.Read())
}

func TestTreeNotifyFansOutToBothChildren(t *testing.T) {
	left := NewAtomicFlag()
	right := NewAtomicFlag()
	left.Set()
	right.Set()
	tr := NewTree(left, right)

	assert.Equal(t, MustReseed, tr.Read())
	tr.NotifyReseed()
	assert.Equal(t, Continue, tr.Read())
}
