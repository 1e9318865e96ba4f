// Package help holds the reference text printed by `stellar help` and the
// REPL's :help command.
package help

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"

	"github.com/thomasrohde/stellar/pkg/ast"
	"github.com/thomasrohde/stellar/pkg/evaluator"
)

// TopicList is the display order of help topics.
var TopicList = []string{"syntax", "types", "operators", "scope", "repl", "diagnostics", "examples"}

// QUICKREF is the overview printed by `stellar help` with no topic.
var QUICKREF = heredoc.Doc(`
	Stellar quick reference

	  print expr;                 write a value
	  let name = expr;            declare (initializer optional)
	  name = expr;                assign an existing variable (+= -= *= /=)
	  { ... }                     block with its own scope
	  if (cond) { ... } else { ... }
	  a and b, a or b             short-circuit, yields an operand
	  // line and /* block */ comments

	Commands: run, repl, check, fmt, trace, help, version
	Topics:   syntax, types, operators, scope, repl, diagnostics, examples

	Run 'stellar help <topic>' for details.
`)

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": heredoc.Doc(`
		Statements end with ';'. Blocks and if branches use braces.

		  let x;              x is declared but uninitialized
		  let y = 1 + 2;
		  y = y * 2;
		  y += 1;             same as y = y + 1
		  print y;
		  if (y > 3) { print "big"; } else { print "small"; }

		Reserved words: if else and or let print struct self while for
		return fun true false null. struct, self, while, for, return and
		fun have no statement form.
	`),
	"types": heredoc.Doc(`
		number   64-bit float: 1, 2.5 (no exponent form, no leading sign)
		string   "text", verbatim, may span lines, no escapes
		bool     true, false
		char     'c', exactly one character
		null     null

		Truthiness (if, !, and, or):
		  number > 0, non-empty string, char other than '0', true.
		  null is always false.
		'!' yields the truthiness of its operand as a bool.
	`),
	"operators": OperatorTable(),
	"scope": heredoc.Doc(`
		Every block and if branch opens a new scope. Reads and assignments
		resolve from the innermost scope outwards. 'let' always declares in
		the current scope and may shadow an outer name or overwrite one in
		the same scope. Assigning a name that was never declared is an
		"Undefined variable" runtime error; assignment never declares.
	`),
	"repl": heredoc.Doc(`
		The REPL runs each input as its own chunk. Variables persist between
		inputs. The value of a bare expression statement is echoed.
		Unfinished input (open brace, parenthesis, string or comment)
		continues on the next line.

		  :help    show this text
		  :env     list global variables (:env --json for JSON)
		  :reset   discard all global variables
		  :quit    exit (also Ctrl-D)
	`),
	"diagnostics": heredoc.Doc(`
		Lexical:  [Line: n] Error: message
		Syntax:   [Line: n] Error: at 'lexeme', message
		Runtime:  Runtime Error: <kind>: message

		Runtime kinds: Operator not defined, Division by zero, Type
		mismatch, Uninitialized access, Undefined variable.

		A chunk with lexical or syntax errors does not run. A runtime error
		aborts only the statement that raised it.
		--diagnostics pretty|json selects another rendering.
	`),
	"examples": heredoc.Doc(`
		let name = "world";
		print "hello " + name;

		let total = 0;
		{
		  let step = 2.5;
		  total += step * 4;
		}
		print total;          // 10

		if (total > 5 and name != "") { print 'y'; }
	`),
}

// MatchTopic resolves name to a topic, accepting a unique prefix.
func MatchTopic(name string) (string, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if content, ok := Topics[name]; ok {
		return name, content, nil
	}
	var matches []string
	for _, topic := range TopicList {
		if name != "" && strings.HasPrefix(topic, name) {
			matches = append(matches, topic)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", name)
	default:
		return "", "", fmt.Errorf("ambiguous help topic %q (matches %s)", name, strings.Join(matches, ", "))
	}
}

var (
	operandTypes = []ast.Type{ast.TypeNumber, ast.TypeString, ast.TypeBool, ast.TypeChar, ast.TypeNull}
	binaryOps    = []ast.BinaryOp{
		ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv,
		ast.OpEqEq, ast.OpNeq, ast.OpGt, ast.OpGtEq, ast.OpLt, ast.OpLtEq,
	}
)

// OperatorTable lists every defined binary operator pairing.
func OperatorTable() string {
	var b strings.Builder
	b.WriteString("Binary operators by operand types (left, right):\n\n")
	total := 0
	for _, l := range operandTypes {
		for _, r := range operandTypes {
			var ops []string
			for _, op := range binaryOps {
				if evaluator.Supports(op, l, r) {
					ops = append(ops, string(op))
				}
			}
			if len(ops) == 0 {
				continue
			}
			total += len(ops)
			fmt.Fprintf(&b, "  %-7s %-7s %s\n", l, r, strings.Join(ops, " "))
		}
	}
	b.WriteString("\nUnary: -number, !any\n")
	b.WriteString("Any other pairing is an \"Operator not defined\" error; x / 0 is \"Division by zero\".\n")
	fmt.Fprintf(&b, "Total: %d operator pairings\n", total)
	return b.String()
}
