package lang

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmplkit/statement"
	"github.com/ardnew/tmplkit/trace"
)

// DefaultItemName is the loop variable of an "each" node without "as".
const DefaultItemName = "item"

// docNode is one entry of a YAML template document. Exactly one of Text,
// Expr, If or Each is set.
type docNode struct {
	Text  *string   `yaml:"text"`
	Expr  string    `yaml:"expr"`
	If    string    `yaml:"if"`
	Then  []docNode `yaml:"then"`
	Else  []docNode `yaml:"else"`
	Each  string    `yaml:"each"`
	As    string    `yaml:"as"`
	Index string    `yaml:"index"`
	Do    []docNode `yaml:"do"`
}

// element is a docNode with its expressions parsed.
type element struct {
	text      *string
	expr      *Expr
	cond      *Expr
	then      []element
	otherwise []element
	each      *Expr
	as, index string
	body      []element
}

// LoadDocument reads a YAML template document and returns its statement
// tree. Every expression is parsed up front, so a returned tree only fails
// at render time on data-dependent errors.
//
// A document is a list of nodes:
//
//	- text: "<ul>"
//	- each: items
//	  as: it
//	  index: i
//	  do:
//	    - text: "<li>"
//	    - expr: it.name
//	    - text: "</li>"
//	- text: "</ul>"
//	- if: items
//	  then:
//	    - text: done
//	  else:
//	    - text: empty
func LoadDocument(r io.Reader) (statement.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	var doc []docNode
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("input", "document"))
	}

	elems, err := compile(doc, "")
	if err != nil {
		return nil, err
	}

	return build(elems, nil), nil
}

func compile(doc []docNode, path string) ([]element, error) {
	elems := make([]element, len(doc))

	for i, d := range doc {
		at := path + "/" + strconv.Itoa(i)

		e, err := d.compile(at)
		if err != nil {
			return nil, err
		}

		elems[i] = e
	}

	return elems, nil
}

func (d docNode) compile(at string) (e element, err error) {
	kinds := 0

	for _, set := range []bool{d.Text != nil, d.Expr != "", d.If != "", d.Each != ""} {
		if set {
			kinds++
		}
	}

	if kinds != 1 {
		return e, ErrDocument.With(
			slog.String("node", at),
			slog.String("reason", "want exactly one of text, expr, if, each"),
		)
	}

	parse := func(src string) (*Expr, error) {
		x, err := Parse(src)
		if err != nil {
			return nil, ErrDocument.Wrap(err).With(slog.String("node", at))
		}

		return x, nil
	}

	switch {
	case d.Text != nil:
		e.text = d.Text

	case d.Expr != "":
		e.expr, err = parse(d.Expr)

	case d.If != "":
		if e.cond, err = parse(d.If); err != nil {
			return e, err
		}

		if e.then, err = compile(d.Then, at+"/then"); err != nil {
			return e, err
		}

		e.otherwise, err = compile(d.Else, at+"/else")

	default:
		if e.each, err = parse(d.Each); err != nil {
			return e, err
		}

		e.as, e.index = d.As, d.Index
		if e.as == "" {
			e.as = DefaultItemName
		}

		e.body, err = compile(d.Do, at+"/do")
	}

	return e, err
}

func build(elems []element, scope Scope) statement.Node {
	nodes := make([]statement.Node, 0, len(elems))

	for _, e := range elems {
		nodes = append(nodes, e.node(scope))
	}

	return statement.Group(nodes...)
}

func (e element) node(scope Scope) statement.Node {
	switch {
	case e.text != nil:
		return statement.Text(*e.text)

	case e.expr != nil:
		return statement.Interpolate(e.expr.Trace(scope))

	case e.cond != nil:
		var otherwise statement.Node
		if len(e.otherwise) > 0 {
			otherwise = build(e.otherwise, scope)
		}

		return statement.If(e.cond.Trace(scope), build(e.then, scope), otherwise)

	default:
		return statement.ForEach(e.each.Trace(scope),
			func(item, index, _ *trace.Placeholder) statement.Node {
				inner := scope.With(e.as, item)
				if e.index != "" {
					inner = inner.With(e.index, index)
				}

				return build(e.body, inner)
			})
	}
}
