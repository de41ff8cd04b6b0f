package swaptrace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/arcswap/internal/swaptrace"
)

type countingHook struct {
	loadFallback, cooldown, helpReplace int
}

func (h *countingHook) OnLoadFallback() { h.loadFallback++ }
func (h *countingHook) OnCooldown()     { h.cooldown++ }
func (h *countingHook) OnHelpReplace()  { h.helpReplace++ }

func TestDefaultHookIsANoop(t *testing.T) {
	swaptrace.Set(nil)
	require.NotPanics(t, func() {
		swaptrace.Get().OnLoadFallback()
		swaptrace.Get().OnCooldown()
		swaptrace.Get().OnHelpReplace()
	})
}

func TestSetInstallsACustomHook(t *testing.T) {
	h := &countingHook{}
	swaptrace.Set(h)
	defer swaptrace.Set(nil)

	swaptrace.Get().OnLoadFallback()
	swaptrace.Get().OnCooldown()
	swaptrace.Get().OnHelpReplace()

	require.Equal(t, 1, h.loadFallback)
	require.Equal(t, 1, h.cooldown)
	require.Equal(t, 1, h.helpReplace)
}
