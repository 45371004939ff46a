package bridge

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Mode is the execution mode attribute of an injected script element.
type Mode string

const (
	// ModePy runs the script on the full single-shot interpreter.
	ModePy Mode = "py"
	// ModeMPy runs the script on the optimized single-shot interpreter.
	ModeMPy Mode = "mpy"
	// ModePyGame runs the script in continuous-loop/graphics mode. The
	// interpreter completion event never fires in this mode, so the
	// readiness gate must be signaled manually.
	ModePyGame Mode = "py-game"
)

// ParseMode validates an execution-mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePy, ModeMPy, ModePyGame:
		return Mode(s), nil
	default:
		return "", &ConfigurationError{Reason: fmt.Sprintf("unknown execution mode %q", s)}
	}
}

func (m Mode) valid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}

// scriptElement builds a <script> node. html.Render treats script children
// as raw text, so the code is emitted verbatim while attributes are escaped.
func scriptElement(attrs []html.Attribute, code string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     attrs,
	}
	if code != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: code})
	}
	return n
}

func renderNode(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", fmt.Errorf("rendering script element: %w", err)
	}
	return b.String(), nil
}

// InitElements returns the two script elements that initialize the embedded
// runtime: the PyScript core module and the bootstrap module installing the
// binding registry and readiness gate. Both must load before interactivity.
func InitElements(opts BootstrapOptions) []*html.Node {
	return []*html.Node{
		scriptElement([]html.Attribute{
			{Key: "type", Val: "module"},
			{Key: "src", Val: CoreScriptURL(opts.Version)},
		}, ""),
		scriptElement([]html.Attribute{
			{Key: "type", Val: "module"},
		}, "\n"+BootstrapJS(opts)),
	}
}

// InitHTML renders InitElements as markup.
func InitHTML(opts BootstrapOptions) (string, error) {
	var parts []string
	for _, el := range InitElements(opts) {
		s, err := renderNode(el)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n"), nil
}

// ScriptComponent injects a standalone embedded-runtime script, either inline
// (Source) or from an external file (Src).
type ScriptComponent struct {
	Source string // inline embedded-runtime code
	Src    string // external script URL; mutually exclusive with Source
	Mode   Mode   // defaults to ModeMPy
	Config string // config attribute payload; defaults to "{}"
}

// Element builds the component's script element. Mode and source problems
// surface here, at build time.
func (c *ScriptComponent) Element() (*html.Node, error) {
	mode := c.Mode
	if mode == "" {
		mode = ModeMPy
	}
	if !mode.valid() {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown execution mode %q", string(c.Mode))}
	}
	if c.Source != "" && c.Src != "" {
		return nil, &ConfigurationError{Reason: "inline source and external src are mutually exclusive"}
	}
	config := c.Config
	if config == "" {
		config = "{}"
	}
	attrs := []html.Attribute{
		{Key: "type", Val: string(mode)},
		{Key: "config", Val: config},
	}
	if c.Src != "" {
		attrs = append(attrs, html.Attribute{Key: "src", Val: c.Src})
		return scriptElement(attrs, ""), nil
	}
	code, err := GenerateScript(c.Source, 0)
	if err != nil {
		return nil, err
	}
	return scriptElement(attrs, "\n"+code), nil
}

// HTML renders the component as markup.
func (c *ScriptComponent) HTML() (string, error) {
	el, err := c.Element()
	if err != nil {
		return "", err
	}
	return renderNode(el)
}

// BridgeConfig configures a BridgeComponent.
type BridgeConfig struct {
	BindingID string   // empty generates a fresh ID
	Mode      Mode     // defaults to ModeMPy
	Config    string   // config attribute payload; defaults to "{}"
	Protocol  Protocol // wire format for hooks and wrapping
	Procedure string   // declared procedure name; defaults to "script"
	Signal    bool     // resolve the readiness gate after the script body
}

// BridgeComponent is one bound component instance: it owns a BindingID,
// accumulates hook wiring requests, and generates both the UI-runtime wiring
// and the wrapped per-binding script element.
type BridgeComponent struct {
	cfg     BridgeConfig
	source  string
	emitter HookEmitter
	hooks   []string
}

// NewBridgeComponent creates a bridge component around the given
// embedded-runtime source (which must declare the configured procedure).
// Configuration problems are reported immediately.
func NewBridgeComponent(source string, cfg BridgeConfig) (*BridgeComponent, error) {
	if cfg.BindingID == "" {
		cfg.BindingID = GenerateID()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeMPy
	}
	if !cfg.Mode.valid() {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown execution mode %q", string(cfg.Mode))}
	}
	if cfg.Config == "" {
		cfg.Config = "{}"
	}
	if cfg.Procedure == "" {
		cfg.Procedure = "script"
	}
	return &BridgeComponent{
		cfg:     cfg,
		source:  source,
		emitter: HookEmitter{Protocol: cfg.Protocol, BindingID: cfg.BindingID},
	}, nil
}

// ID returns the component's BindingID.
func (b *BridgeComponent) ID() string { return b.cfg.BindingID }

// Var returns the globally-addressable name for a state or ref under this
// binding, for splicing into page markup (legacy protocol) or debugging.
func (b *BridgeComponent) Var(name string) string {
	return Name(name, b.cfg.BindingID)
}

// UseState declares a state variable hook.
func (b *BridgeComponent) UseState(name string, initial any) *BridgeComponent {
	b.hooks = append(b.hooks, b.emitter.UseState(name, initial))
	return b
}

// UseRef declares a ref hook.
func (b *BridgeComponent) UseRef(name string, initial any) *BridgeComponent {
	b.hooks = append(b.hooks, b.emitter.UseRef(name, initial))
	return b
}

// UseEffect declares an effect hook calling the named registered function.
func (b *BridgeComponent) UseEffect(fn string, deps []string) *BridgeComponent {
	b.hooks = append(b.hooks, b.emitter.UseEffect(fn, deps))
	return b
}

// CallFunc emits a page-side callback expression for this binding.
func (b *BridgeComponent) CallFunc(fn string, args ...any) string {
	return b.emitter.CallFunc(fn, args...)
}

// HookScript returns the accumulated hook wiring for the UI runtime to
// evaluate once per render. The output is syntax-checked; a failure fails
// the page build.
func (b *BridgeComponent) HookScript() (string, error) {
	script := strings.Join(b.hooks, "")
	if err := ValidateJS(script); err != nil {
		return "", err
	}
	return script, nil
}

// ScriptText extracts the declared procedure from the component's source and
// serializes it for injection: wrapped with per-binding setup/teardown under
// the registry protocol, plain under the legacy globals protocol.
func (b *BridgeComponent) ScriptText() (string, error) {
	body, err := ExtractProcedure(b.source, b.cfg.Procedure)
	if err != nil {
		return "", err
	}
	if b.cfg.Protocol == ProtocolGlobals {
		return GenerateScript(body, 0)
	}
	return WrapBinding(body, b.cfg.BindingID, WrapOptions{Signal: b.cfg.Signal})
}

// Element builds the component's script element, tagged with its execution
// mode, config payload, and binding ID.
func (b *BridgeComponent) Element() (*html.Node, error) {
	code, err := b.ScriptText()
	if err != nil {
		return nil, err
	}
	attrs := []html.Attribute{
		{Key: "type", Val: string(b.cfg.Mode)},
		{Key: "config", Val: b.cfg.Config},
		{Key: "data-pysid", Val: SanitizeID(b.cfg.BindingID)},
	}
	return scriptElement(attrs, "\n"+code), nil
}

// HTML renders the component as markup.
func (b *BridgeComponent) HTML() (string, error) {
	el, err := b.Element()
	if err != nil {
		return "", err
	}
	return renderNode(el)
}
