package urlpattern

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// componentKind selects the per-component defaults.
type componentKind int

const (
	kindPathname componentKind = iota
	kindSearch
	kindHash
)

// segmentPattern is what a bare :name matches in each component.
func (k componentKind) segmentPattern() string {
	if k == kindPathname {
		return "[^/]+"
	}
	return ".+"
}

func (k componentKind) String() string {
	switch k {
	case kindPathname:
		return "pathname"
	case kindSearch:
		return "search"
	default:
		return "hash"
	}
}

// partKind is the type of a parsed pattern part.
type partKind int

const (
	partLiteral partKind = iota
	partParam
	partGroup
)

// part is one node of a parsed pattern.
type part struct {
	kind partKind

	// literal is the fixed text of a partLiteral.
	literal string

	// name is the group name of a partParam ("id", or "0" for anonymous).
	name string

	// regex is the expression a partParam matches.
	regex string

	// modifier is 0, '?', '*' or '+'.
	modifier byte

	// prefix is a "/" pulled in front of a modified pathname param.
	prefix string

	// parts are the children of a partGroup.
	parts []part
}

// parser turns a template into parts.
type parser struct {
	src     string
	pos     int
	kind    componentKind
	unnamed int
}

// parse reads parts until end of input or the closing '}' of a group.
func (p *parser) parse(inGroup bool) ([]part, error) {
	var parts []part

	appendLiteral := func(s string) {
		if n := len(parts); n > 0 && parts[n-1].kind == partLiteral {
			parts[n-1].literal += s
			return
		}
		parts = append(parts, part{kind: partLiteral, literal: s})
	}

	appendParam := func(pt part) {
		pt.modifier = p.modifier()
		if pt.modifier != 0 && p.kind == kindPathname {
			if n := len(parts); n > 0 && parts[n-1].kind == partLiteral && strings.HasSuffix(parts[n-1].literal, "/") {
				parts[n-1].literal = strings.TrimSuffix(parts[n-1].literal, "/")
				pt.prefix = "/"
				if parts[n-1].literal == "" {
					parts = parts[:n-1]
				}
			}
		}
		parts = append(parts, pt)
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '}':
			if !inGroup {
				return nil, fmt.Errorf("urlpattern: unbalanced '}' at %d in %q", p.pos, p.src)
			}
			return parts, nil

		case '\\':
			if p.pos+1 >= len(p.src) {
				return nil, fmt.Errorf("urlpattern: trailing escape in %q", p.src)
			}
			appendLiteral(p.src[p.pos+1 : p.pos+2])
			p.pos += 2

		case ':':
			p.pos++
			name := p.identifier()
			if name == "" {
				return nil, fmt.Errorf("urlpattern: missing parameter name at %d in %q", p.pos-1, p.src)
			}
			regex := p.kind.segmentPattern()
			if p.pos < len(p.src) && p.src[p.pos] == '(' {
				r, err := p.regexp()
				if err != nil {
					return nil, err
				}
				regex = r
			}
			appendParam(part{kind: partParam, name: name, regex: regex})

		case '(':
			r, err := p.regexp()
			if err != nil {
				return nil, err
			}
			appendParam(part{kind: partParam, name: p.nextUnnamed(), regex: r})

		case '*':
			p.pos++
			appendParam(part{kind: partParam, name: p.nextUnnamed(), regex: ".*"})

		case '{':
			p.pos++
			inner, err := p.parse(true)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) || p.src[p.pos] != '}' {
				return nil, fmt.Errorf("urlpattern: unbalanced '{' in %q", p.src)
			}
			p.pos++
			parts = append(parts, part{kind: partGroup, parts: inner, modifier: p.modifier()})

		default:
			appendLiteral(string(c))
			p.pos++
		}
	}

	if inGroup {
		return nil, fmt.Errorf("urlpattern: unbalanced '{' in %q", p.src)
	}
	return parts, nil
}

// identifier reads a parameter name.
func (p *parser) identifier() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		isStart := c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isStart && !(isDigit && p.pos > start) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// regexp reads a balanced "(...)" and returns its contents.
func (p *parser) regexp() (string, error) {
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			p.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				body := p.src[start+1 : p.pos]
				p.pos++
				if body == "" {
					return "", fmt.Errorf("urlpattern: empty regexp group at %d in %q", start, p.src)
				}
				return body, nil
			}
		}
		p.pos++
	}
	return "", fmt.Errorf("urlpattern: unbalanced '(' at %d in %q", start, p.src)
}

// modifier consumes an optional '?', '*' or '+'.
func (p *parser) modifier() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	switch c := p.src[p.pos]; c {
	case '?', '*', '+':
		p.pos++
		return c
	}
	return 0
}

func (p *parser) nextUnnamed() string {
	name := strconv.Itoa(p.unnamed)
	p.unnamed++
	return name
}

// builder writes parts as an anchored regular expression.
type builder struct {
	buf bytes.Buffer
	// names maps regexp group names to pattern group names.
	names map[string]string
	seen  map[string]bool
}

func (b *builder) write(parts []part) error {
	for _, pt := range parts {
		switch pt.kind {
		case partLiteral:
			b.buf.WriteString(regexp.QuoteMeta(pt.literal))

		case partParam:
			if b.seen[pt.name] {
				return fmt.Errorf("urlpattern: duplicated group name %q", pt.name)
			}
			b.seen[pt.name] = true

			group := "g" + strconv.Itoa(len(b.names))
			b.names[group] = pt.name

			prefix := regexp.QuoteMeta(pt.prefix)
			switch pt.modifier {
			case 0:
				fmt.Fprintf(&b.buf, "%s(?P<%s>%s)", prefix, group, pt.regex)
			case '?':
				fmt.Fprintf(&b.buf, "(?:%s(?P<%s>%s))?", prefix, group, pt.regex)
			case '+':
				fmt.Fprintf(&b.buf, "%s(?P<%s>(?:%s)(?:%s(?:%s))*)", prefix, group, pt.regex, prefix, pt.regex)
			case '*':
				fmt.Fprintf(&b.buf, "(?:%s(?P<%s>(?:%s)(?:%s(?:%s))*))?", prefix, group, pt.regex, prefix, pt.regex)
			}

		case partGroup:
			b.buf.WriteString("(?:")
			if err := b.write(pt.parts); err != nil {
				return err
			}
			b.buf.WriteByte(')')
			if pt.modifier != 0 {
				b.buf.WriteByte(pt.modifier)
			}
		}
	}
	return nil
}

// compileComponent parses and compiles one component template.
func compileComponent(template string, kind componentKind) (component, error) {
	if template == "" {
		template = "*"
	}

	p := &parser{src: template, kind: kind}
	parts, err := p.parse(false)
	if err != nil {
		return component{}, err
	}

	b := &builder{names: map[string]string{}, seen: map[string]bool{}}
	b.buf.WriteByte('^')
	if err := b.write(parts); err != nil {
		return component{}, err
	}
	b.buf.WriteByte('$')

	re, err := compileRegexp(b.buf.String())
	if err != nil {
		return component{}, fmt.Errorf("urlpattern: invalid %s pattern %q: %w", kind, template, err)
	}

	return component{template: template, re: re, names: b.names}, nil
}
