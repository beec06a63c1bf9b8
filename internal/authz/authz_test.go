package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwns(t *testing.T) {
	assert.True(t, Owns(3, 3))
	assert.False(t, Owns(3, 4))
	assert.False(t, Owns(0, 0), "anonymous requester never owns anything")
}

func TestCanListPatientScoped(t *testing.T) {
	self := uint(7)
	other := uint(8)

	tests := []struct {
		name        string
		requesterID uint
		isStaff     bool
		filter      *uint
		allowed     bool
		reason      string
	}{
		{
			name:        "staff may list everything",
			requesterID: 1,
			isStaff:     true,
			filter:      nil,
			allowed:     true,
		},
		{
			name:        "non-staff needs a patient filter",
			requesterID: 7,
			filter:      nil,
			allowed:     false,
			reason:      "only staff can access a list of healings not specified by patient id",
		},
		{
			name:        "patient may list their own records",
			requesterID: 7,
			filter:      &self,
			allowed:     true,
		},
		{
			name:        "patient may not list another patient's records",
			requesterID: 7,
			filter:      &other,
			allowed:     false,
			reason:      "only staff or the patient with this id can access this list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanListPatientScoped(tt.requesterID, tt.isStaff, tt.filter, "healings")
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCanMutate(t *testing.T) {
	d := CanMutate(2, 2, "hurt")
	assert.True(t, d.Allowed)

	d = CanMutate(2, 9, "hurt")
	assert.False(t, d.Allowed)
	assert.Equal(t, "only the patient who owns this hurt can modify it", d.Reason)
}
