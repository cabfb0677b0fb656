package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountID(t *testing.T) {
	tests := []struct {
		name     string
		infoA    map[string]string
		typeA    string
		infoB    map[string]string
		typeB    string
		wantSame bool
	}{
		{
			name:     "identical pairs",
			infoA:    map[string]string{"access_token": "abc"},
			typeA:    "yuque",
			infoB:    map[string]string{"access_token": "abc"},
			typeB:    "yuque",
			wantSame: true,
		},
		{
			name:     "key order does not matter",
			infoA:    map[string]string{"access_token": "abc", "host": "https://www.yuque.com"},
			typeA:    "yuque",
			infoB:    map[string]string{"host": "https://www.yuque.com", "access_token": "abc"},
			typeB:    "yuque",
			wantSame: true,
		},
		{
			name:     "different token",
			infoA:    map[string]string{"access_token": "abc"},
			typeA:    "yuque",
			infoB:    map[string]string{"access_token": "abd"},
			typeB:    "yuque",
			wantSame: false,
		},
		{
			name:     "different type",
			infoA:    map[string]string{"access_token": "abc"},
			typeA:    "yuque",
			infoB:    map[string]string{"access_token": "abc"},
			typeB:    "github",
			wantSame: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AccountID(tt.infoA, tt.typeA)
			b := AccountID(tt.infoB, tt.typeB)
			assert.NotEmpty(t, a)
			if tt.wantSame {
				assert.Equal(t, a, b)
			} else {
				assert.NotEqual(t, a, b)
			}
		})
	}
}

func TestNewAccount(t *testing.T) {
	info := map[string]string{"access_token": "abc"}
	acc := NewAccount("yuque", info, UserInfo{Name: "Diamond", Login: "diamond", Avatar: "a.png"}, "repo-1")

	assert.Equal(t, AccountID(info, "yuque"), acc.ID)
	assert.Equal(t, "Diamond", acc.Name)
	assert.Equal(t, "diamond", acc.Login)
	assert.Equal(t, "repo-1", acc.DefaultRepositoryID)

	// The account keeps its own copy of info.
	info["access_token"] = "changed"
	assert.Equal(t, "abc", acc.Info["access_token"])
}
