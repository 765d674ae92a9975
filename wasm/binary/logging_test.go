package binary

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingReader(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	b := NewModuleBuilder()
	err := DecodeModule(concat(header, typeSection, funcSection, codeSection),
		NewLoggingReader(b, zap.New(core)), DecodeOptions{})
	require.NoError(t, err)

	// Events reach the wrapped reader unchanged.
	require.Len(t, b.Module().CodeSection, 1)

	var names []string
	for _, e := range logs.All() {
		names = append(names, e.Message)
	}
	require.Equal(t, []string{
		"begin_module",
		"begin_type_section", "on_type_count", "on_type", "end_type_section",
		"begin_function_section", "on_function_count", "on_function", "end_function_section",
		"begin_code_section", "on_function_body_count", "begin_function_body",
		"on_local_decl_count",
		"on_opcode", "on_local_get",
		"on_opcode", // terminal end closes the body without an on_end event
		"end_function_body", "end_code_section",
		"end_module",
	}, names)
}

func TestLoggingReader_error(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	err := DecodeModule([]byte{0x00, 0x61, 0x73, 0x6d, 0x09, 0x00, 0x00, 0x00},
		NewLoggingReader(NopReader{}, zap.New(core)), DecodeOptions{})
	require.ErrorContains(t, err, "invalid version header")

	errored := logs.FilterMessage("on_error").All()
	require.Len(t, errored, 1)
	require.Equal(t, int64(4), errored[0].ContextMap()["offset"])
}

func TestLoggingReader_nilLogger(t *testing.T) {
	require.NoError(t, DecodeModule(header, NewLoggingReader(NopReader{}, nil), DecodeOptions{}))
}
