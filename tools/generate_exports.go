//go:build ignore

// generate_exports re-exports the public surface of the interfaces package from the root
// serial package. Run it with go generate from the module root.
package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"
)

const sourcePackage = "interfaces"

// section groups exported names under one banner in exports.go
type section struct {
	title  string
	types  []string
	consts []string
	vars   []string
}

// sectionOrder fixes the banner order in the generated file
var sectionOrder = []string{"configuration", "constants", "errors", "functions", "interfaces"}

func main() {
	sections, err := collect(sourcePackage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate_exports: %v\n", err)
		os.Exit(1)
	}

	src, err := render(sections)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate_exports: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("exports.go", src, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "generate_exports: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("exports.go generated")
}

// collect parses every non-test file of dir and sorts its exported declarations into sections
func collect(dir string) (map[string]*section, error) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, 0)
	if err != nil {
		return nil, err
	}
	pkg, ok := pkgs[dir]
	if !ok {
		return nil, fmt.Errorf("package %s not found in %s", dir, dir)
	}

	sections := make(map[string]*section, len(sectionOrder))
	for _, name := range sectionOrder {
		sections[name] = &section{title: strings.ToUpper(name)}
	}

	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				collectGen(sections, d)
			case *ast.FuncDecl:
				// methods travel with their type alias
				if d.Recv != nil || !d.Name.IsExported() {
					continue
				}
				s := sections[funcSection(d.Name.Name)]
				s.vars = append(s.vars, d.Name.Name)
			}
		}
	}
	return sections, nil
}

func collectGen(sections map[string]*section, d *ast.GenDecl) {
	for _, spec := range d.Specs {
		switch sp := spec.(type) {
		case *ast.TypeSpec:
			if sp.Name.IsExported() {
				s := sections[typeSection(sp.Name.Name)]
				s.types = append(s.types, sp.Name.Name)
			}
		case *ast.ValueSpec:
			for _, name := range sp.Names {
				if !name.IsExported() {
					continue
				}
				if d.Tok == token.CONST {
					sections["constants"].consts = append(sections["constants"].consts, name.Name)
					continue
				}
				// exported package variables are all sentinel errors
				sections["errors"].vars = append(sections["errors"].vars, name.Name)
			}
		}
	}
}

func typeSection(name string) string {
	switch name {
	case "Adapter", "Creator", "Middleware":
		return "interfaces"
	case "Error", "Kind", "Op":
		return "errors"
	}
	return "configuration"
}

func funcSection(name string) string {
	if name == "Apply" || strings.HasPrefix(name, "With") {
		return "functions"
	}
	return "errors"
}

func render(sections map[string]*section) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("package serial\n\n//go:generate go run tools/generate_exports.go\n\n")
	fmt.Fprintf(&buf, "import (\n\t\"github.com/MichaelAJay/go-serial/%s\"\n)\n\n", sourcePackage)

	for _, name := range sectionOrder {
		s := sections[name]
		if len(s.types)+len(s.consts)+len(s.vars) == 0 {
			continue
		}
		banner(&buf, s.title)
		block(&buf, "type", s.types)
		block(&buf, "const", s.consts)
		block(&buf, "var", s.vars)
	}

	banner(&buf, "COMPILE-TIME VALIDATION")
	buf.WriteString("// Ensure re-exported types maintain compatibility\n\nvar (\n")
	buf.WriteString("\t_ Option = interfaces.WithRegistry(nil)\n")
	buf.WriteString("\t_ Option = interfaces.WithOptions(nil)\n")
	buf.WriteString("\t_ Option = interfaces.WithOption(\"\", nil)\n")
	for _, c := range sections["constants"].consts {
		if strings.HasPrefix(c, "Kind") {
			fmt.Fprintf(&buf, "\t_ Kind = interfaces.%s\n", c)
		}
	}
	buf.WriteString(")\n")

	return format.Source(buf.Bytes())
}

func banner(buf *bytes.Buffer, title string) {
	buf.WriteString("// =============================================================================\n")
	fmt.Fprintf(buf, "// %s\n", title)
	buf.WriteString("// =============================================================================\n\n")
}

func block(buf *bytes.Buffer, keyword string, names []string) {
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	fmt.Fprintf(buf, "%s (\n", keyword)
	for _, n := range names {
		fmt.Fprintf(buf, "\t%s = %s.%s\n", n, sourcePackage, n)
	}
	buf.WriteString(")\n\n")
}
