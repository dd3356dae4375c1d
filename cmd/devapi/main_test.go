package main

import (
	"testing"

	"github.com/loganlanou/profiledesk/internal/api/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	fake := apitest.NewAPI()

	seed(fake, 3)

	demo, ok := fake.UserByEmail(demoEmail)
	require.True(t, ok)
	assert.Equal(t, demoPassword, demo.Password)
	assert.Equal(t, "Demo", demo.Firstname)
}
