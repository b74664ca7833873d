// Package registry maps operation names to handlers and their parameter
// contracts, and dispatches tool calls to them.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

// Handler executes one named operation with parsed arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Definition describes a registered operation for assistant configuration.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type operation struct {
	def     Definition
	schema  *jsonschema.Schema
	handler Handler
}

// Registry stores operation handlers keyed by wire name. It is read-only
// after setup and shared across sessions.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]operation
}

// New creates an empty operation registry.
func New() *Registry {
	return &Registry{ops: make(map[string]operation)}
}

// Register adds an operation. The parameter schema is compiled eagerly so
// a broken contract fails at startup, not at dispatch time.
func (r *Registry) Register(name, description string, paramSchema json.RawMessage, h Handler) error {
	if name == "" {
		return fmt.Errorf("operation name is required")
	}
	if h == nil {
		return fmt.Errorf("handler is required for %s", name)
	}
	schema, err := jsonschema.CompileString(name+".schema.json", string(paramSchema))
	if err != nil {
		return fmt.Errorf("invalid parameter schema for %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("operation already registered: %s", name)
	}
	r.ops[name] = operation{
		def:     Definition{Name: name, Description: description, Parameters: paramSchema},
		schema:  schema,
		handler: h,
	}
	return nil
}

// MustRegister adds an operation or panics. Registration happens once at
// startup, so a broken contract is a programming error.
func (r *Registry) MustRegister(name, description string, paramSchema json.RawMessage, h Handler) {
	if err := r.Register(name, description, paramSchema, h); err != nil {
		panic(err)
	}
}

// Dispatch parses and validates the raw arguments, invokes the handler,
// and serializes the outcome. It never returns a Go error: every fault is
// normalized to an {"error": ...} payload so a single tool failure is
// reported into the conversation instead of crashing the turn.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) json.RawMessage {
	r.mu.RLock()
	op, ok := r.ops[name]
	r.mu.RUnlock()
	if !ok {
		return ErrorPayload(fmt.Sprintf("%v: %s", domain.ErrUnknownOperation, name))
	}

	if len(rawArgs) == 0 {
		rawArgs = json.RawMessage(`{}`)
	}
	var parsed any
	if err := json.Unmarshal(rawArgs, &parsed); err != nil {
		return ErrorPayload(fmt.Sprintf("%v: %v", domain.ErrMalformedArguments, err))
	}
	if err := op.schema.Validate(parsed); err != nil {
		return ErrorPayload(fmt.Sprintf("%v: %v", domain.ErrMalformedArguments, err))
	}

	result, err := op.handler(ctx, rawArgs)
	if err != nil {
		log.Printf("WARN: operation %s failed: %v", name, err)
		return ErrorPayload(err.Error())
	}

	out, err := json.Marshal(result)
	if err != nil {
		log.Printf("ERROR: operation %s produced unserializable result: %v", name, err)
		return ErrorPayload("internal error: unserializable result")
	}
	return out
}

// Definitions returns the registered operations sorted by name, for
// assistant function-tool configuration.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.ops))
	for _, op := range r.ops {
		defs = append(defs, op.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names returns the registered operation names sorted alphabetically.
func (r *Registry) Names() []string {
	defs := r.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

// ErrorPayload wraps a message in the {"error": ...} envelope every tool
// output fault uses on the wire.
func ErrorPayload(msg string) json.RawMessage {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return out
}
