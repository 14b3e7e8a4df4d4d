package clinic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in       string
		expected Role
		ok       bool
	}{
		{"patient", RolePatient, true},
		{"doctor", RoleDoctor, true},
		{"admin", RoleAdmin, true},
		{"", RolePatient, true},
		{"superuser", "", false},
		{"Admin", "", false},
	}

	for _, c := range cases {
		role, err := ParseRole(c.in)
		if c.ok {
			assert.NoError(t, err, "role %q", c.in)
			assert.Equal(t, c.expected, role)
		} else {
			assert.Error(t, err, "role %q", c.in)
		}
	}
}
