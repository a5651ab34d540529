package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Transform dispatch
// ---------------------------------------------------------------------------

// Call is a method call as the parser delivers it, before any transform
// has looked at it. Arguments is the raw argument node: nil when the call
// has no argument list, otherwise an *ArrayLiteral, *SplatValue,
// *ConcatArgs or *PushArgs.
type Call struct {
	Line      int
	Receiver  Node
	Name      string
	Arguments Node
	Privately bool
}

// Transform rewrites matching calls into specialized sends. Match returns
// nil when the call does not match.
type Transform struct {
	Category    string
	Name        string
	Description string
	Match       func(c *Call) *Send
}

// Transform categories.
const (
	DefaultCategory = "default"
	KernelCategory  = "kernel"
	MagicCategory   = "magic"
	AllCategories   = "all"
)

// plain builds the send a transform specializes. Transforms registered
// without arguments drop the argument list.
func (c *Call) plain(withArgs bool, special *Specialization) *Send {
	s := &Send{
		Pos:       at(c.Line),
		Receiver:  c.Receiver,
		Name:      c.Name,
		Privately: c.Privately,
		Special:   special,
	}
	if withArgs {
		s.Arguments = newActualArguments(c.Line, c.Arguments)
	}
	return s
}

// matchArguments reports whether the raw arguments are a fixed list of
// exactly count values.
func matchArguments(args Node, count int) bool {
	switch a := args.(type) {
	case nil:
		return count == 0
	case *ArrayLiteral:
		return len(a.Body) == count
	}
	return false
}

// isRubinius reports whether n is the bare Rubinius constant.
func isRubinius(n Node) bool {
	c, ok := n.(*ConstantAccess)
	return ok && c.Name == "Rubinius"
}

// isTypeConstant reports whether n is Rubinius::Type.
func isTypeConstant(n Node) bool {
	c, ok := n.(*ScopedConstant)
	return ok && c.Name == "Type" && isRubinius(c.Parent)
}

func isSelf(n Node) bool {
	_, ok := n.(*Self)
	return ok
}

// rubiniusSend matches Rubinius.<method>(...) and keeps the arguments.
func rubiniusSend(name, method string) func(c *Call) *Send {
	return func(c *Call) *Send {
		if !isRubinius(c.Receiver) || c.Name != method {
			return nil
		}
		return c.plain(true, &Specialization{Transform: name})
	}
}

var fastMathOperators = map[string]string{
	"+":   "meta_send_op_plus",
	"-":   "meta_send_op_minus",
	"==":  "meta_send_op_equal",
	"===": "meta_send_op_tequal",
	"<":   "meta_send_op_lt",
	">":   "meta_send_op_gt",
}

type rename struct {
	to    string
	count int
}

var kernelMethods = map[string]rename{
	"/":         {"divide", 1},
	"__slash__": {"/", 1},
	"class":     {"__class__", 0},
}

var systemMethods = map[string]rename{
	"__kind_of__":     {"kind_of", 1},
	"__instance_of__": {"instance_of", 1},
	"__nil__":         {"is_nil", 0},
}

var coerceMethods = map[string]bool{
	"coerce_to":          true,
	"check_convert_type": true,
	"try_convert":        true,
}

func renaming(name string, table map[string]rename) func(c *Call) *Send {
	return func(c *Call) *Send {
		r, ok := table[c.Name]
		if !ok || !matchArguments(c.Arguments, r.count) {
			return nil
		}
		s := c.plain(true, &Specialization{Transform: name, Original: c.Name})
		s.Name = r.to
		return s
	}
}

var transformCatalog = []Transform{
	{
		Category:    DefaultCategory,
		Name:        "block_given",
		Description: "VM instruction for block_given?, iterator?",
		Match: func(c *Call) *Send {
			if isSelf(c.Receiver) && (c.Name == "block_given?" || c.Name == "iterator?") {
				return c.plain(false, &Specialization{Transform: "block_given"})
			}
			return nil
		},
	},
	{
		Category:    KernelCategory,
		Name:        "access_undefined",
		Description: "VM instruction for undefined",
		Match: func(c *Call) *Send {
			if c.Privately && c.Name == "undefined" {
				return c.plain(false, &Specialization{Transform: "access_undefined"})
			}
			return nil
		},
	},
	{DefaultCategory, "primitive", "Rubinius.primitive", rubiniusSend("primitive", "primitive")},
	{DefaultCategory, "frozen", "Rubinius.check_frozen", rubiniusSend("frozen", "check_frozen")},
	{DefaultCategory, "invoke_primitive", "Rubinius.invoke_primitive", rubiniusSend("invoke_primitive", "invoke_primitive")},
	{DefaultCategory, "call_custom", "Rubinius.call_custom", rubiniusSend("call_custom", "call_custom")},
	{DefaultCategory, "single_block_arg", "Rubinius.single_block_arg", rubiniusSend("single_block_arg", "single_block_arg")},
	{DefaultCategory, "assembly", "Rubinius.asm", rubiniusSend("assembly", "asm")},
	{
		Category:    KernelCategory,
		Name:        "privately",
		Description: "Rubinius.privately",
		Match: func(c *Call) *Send {
			if isRubinius(c.Receiver) && c.Name == "privately" {
				return c.plain(false, &Specialization{Transform: "privately", InlineBlock: true})
			}
			return nil
		},
	},
	{
		Category:    DefaultCategory,
		Name:        "fast_math",
		Description: "VM instructions for math, relational methods",
		Match: func(c *Call) *Send {
			op, ok := fastMathOperators[c.Name]
			if !ok || !matchArguments(c.Arguments, 1) {
				return nil
			}
			return c.plain(true, &Specialization{Transform: "fast_math", Operator: op})
		},
	},
	{
		Category:    DefaultCategory,
		Name:        "fast_new",
		Description: "Fast SomeClass.new path",
		Match: func(c *Call) *Send {
			if c.Arguments == nil && c.Privately {
				return nil
			}
			if c.Name != "new" {
				return nil
			}
			return c.plain(true, &Specialization{Transform: "fast_new"})
		},
	},
	{KernelCategory, "kernel_methods", "Safe names for fundamental methods", renaming("kernel_methods", kernelMethods)},
	{DefaultCategory, "fast_system", "VM instructions for certain methods", renaming("fast_system", systemMethods)},
	{
		Category:    DefaultCategory,
		Name:        "fast_coerce",
		Description: "Fast Rubinius::Type.coerce_to path",
		Match: func(c *Call) *Send {
			if isTypeConstant(c.Receiver) && coerceMethods[c.Name] && matchArguments(c.Arguments, 3) {
				return c.plain(true, &Specialization{Transform: "fast_coerce"})
			}
			return nil
		},
	},
	{
		Category:    MagicCategory,
		Name:        "loop",
		Description: "loop do ... end",
		Match: func(c *Call) *Send {
			if isSelf(c.Receiver) && c.Name == "loop" {
				return c.plain(false, &Specialization{Transform: "loop", InlineBlock: true})
			}
			return nil
		},
	},
}

// Categories lists the transform categories in the order they were first
// registered.
func Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range transformCatalog {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

// DefaultTransforms returns every registered transform, grouped by
// category in category registration order.
func DefaultTransforms() []Transform {
	ts, _ := TransformsFor(AllCategories)
	return ts
}

// TransformsFor returns the transforms of the named categories. "all"
// selects every category. Within a category transforms keep their
// registration order; categories are taken in the order given.
func TransformsFor(categories ...string) ([]Transform, error) {
	for _, c := range categories {
		if c == AllCategories {
			categories = Categories()
			break
		}
	}

	var out []Transform
	seen := make(map[string]bool)
	for _, category := range categories {
		if seen[category] {
			continue
		}
		seen[category] = true
		found := false
		for _, t := range transformCatalog {
			if t.Category == category {
				out = append(out, t)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown transform category %q", category)
		}
	}
	return out, nil
}

// LookupTransform returns a registered transform by name.
func LookupTransform(name string) (Transform, bool) {
	for _, t := range transformCatalog {
		if t.Name == name {
			return t, true
		}
	}
	return Transform{}, false
}

// Dispatch offers the call to each transform in order and returns the
// first specialization produced, or nil when none matched.
func Dispatch(transforms []Transform, c *Call) *Send {
	for _, t := range transforms {
		if s := t.Match(c); s != nil {
			return s
		}
	}
	return nil
}
