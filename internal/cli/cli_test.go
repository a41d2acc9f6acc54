package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/builder"
	"github.com/weftlabs/weft/internal/endpoint"
	"github.com/weftlabs/weft/internal/topology"
)

func TestClassify(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Classify(nil))
	})

	t.Run("declaration errors become validation failures", func(t *testing.T) {
		cases := map[string]error{
			"duplicate name":       fmt.Errorf("add node: %w", topology.ErrDuplicateName),
			"unknown node":         fmt.Errorf("resolve: %w", topology.ErrUnknownNode),
			"cycle":                &topology.CycleError{From: "a", To: "b", Path: []string{"b", "a"}},
			"unsupported protocol": fmt.Errorf("link: %w", endpoint.ErrUnsupportedProtocol),
			"invalid config": &builder.InvalidConfigError{
				Kind: topology.KindCache, Name: "sessions", Violations: []string{"network must be set"},
			},
			"joined violations": errors.Join(
				&builder.InvalidConfigError{Kind: topology.KindNetwork, Name: "core", Violations: []string{"cidr must be set"}},
				errors.New("unrelated"),
			),
		}
		for name, err := range cases {
			t.Run(name, func(t *testing.T) {
				assert.Equal(t, ExitValidation, Code(Classify(err)))
			})
		}
	})

	t.Run("unknown errors are internal", func(t *testing.T) {
		assert.Equal(t, ExitInternal, Code(Classify(errors.New("disk on fire"))))
	})

	t.Run("existing exit errors pass through", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", &ExitError{Code: ExitValidation, Message: "bad flag"})
		assert.Equal(t, ExitValidation, Code(Classify(wrapped)))
	})
}

func TestCode(t *testing.T) {
	assert.Equal(t, ExitOK, Code(nil))
	assert.Equal(t, ExitValidation, Code(Validation(errors.New("nope"))))
	assert.Equal(t, ExitInternal, Code(Internal(errors.New("boom"))))
	assert.Equal(t, ExitInternal, Code(errors.New("plain")))
}

func TestNewLogger(t *testing.T) {
	t.Run("text format honours the level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger("warn", "text", &buf)

		logger.Info("hidden")
		logger.Warn("visible")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "visible")
	})

	t.Run("json format emits json", func(t *testing.T) {
		var buf bytes.Buffer
		NewLogger("info", "json", &buf).Info("hello")
		require.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger("loud", "text", &buf)
		logger.Debug("hidden")
		logger.Info("visible")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
	})
}
