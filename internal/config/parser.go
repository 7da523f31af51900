package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table out of the Lua state.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile reads and parses the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if len(data) > maxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, maxConfigSize),
		}
	}

	cfg, err := p.ParseString(ctx, string(data))
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	// Detect platform and inject platform table
	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "zksvm" table. Absent keys keep their zero
// value; keys of the wrong type are errors.
func extractConfig(L *lua.LState) (*Config, error) {
	global := L.GetGlobal(luaGlobalZksvm)
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalZksvm),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	cfg := &Config{}
	var err error

	if cfg.DataDir, err = stringField(table, luaFieldDataDir); err != nil {
		return nil, err
	}
	if cfg.Keyring, err = stringField(table, luaFieldKeyring); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = stringField(table, luaFieldLogLevel); err != nil {
		return nil, err
	}
	if cfg.FallbackBase, err = stringField(table, luaFieldFallbackBase); err != nil {
		return nil, err
	}

	switch v := table.RawGetString(luaFieldTimeout).(type) {
	case *lua.LNilType:
	case lua.LNumber:
		cfg.RequestTimeout = time.Duration(float64(v) * float64(time.Second))
	default:
		return nil, fieldTypeError(luaFieldTimeout, "number of seconds", v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return cfg, nil
}

func stringField(table *lua.LTable, name string) (string, error) {
	switch v := table.RawGetString(name).(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LString:
		return string(v), nil
	default:
		return "", fieldTypeError(name, "string", v)
	}
}

func fieldTypeError(name, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s'", name),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
