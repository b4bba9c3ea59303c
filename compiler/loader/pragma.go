package loader

import (
	"errors"
	"fmt"
	"go/ast"
	"go/types"
	"strings"
)

// ParsePragmas records the function pragmas found in the comments of file.
//
//	//sigo:preservenone <func>
//	//sigo:callconv <func> <convention>
//	//sigo:linkage <func> <linkage>
//	//sigo:extern <func> <symbol>
//	//go:linkname <func> [symbol]
//	//go:export <func> <symbol>
func (s *SymbolInfoStore) ParsePragmas(file *ast.File, pkg *types.Package, fset positioner) (err error) {
	for _, commentGroup := range file.Comments {
		for _, comment := range commentGroup.List {
			// Split the comment on the space character
			parts := strings.Fields(comment.Text)
			count := len(parts)
			if count == 0 || !isPragma(parts[0]) {
				continue
			}

			syntaxError := func() {
				err = errors.Join(err, fmt.Errorf("%s: %w: %s", fset.Position(comment.Pos()), ErrPragmaSyntax, comment.Text))
			}

			switch parts[0] {
			case "//sigo:preservenone":
				if count == 2 {
					info := s.GetSymbolInfo(qualifiedName(parts[1], pkg))
					info.PreserveNone = true
				} else {
					syntaxError()
				}
			case "//sigo:callconv":
				if count == 3 {
					info := s.GetSymbolInfo(qualifiedName(parts[1], pkg))
					info.CallingConv = strings.ToLower(parts[2])
				} else {
					syntaxError()
				}
			case "//sigo:linkage":
				if count == 3 {
					info := s.GetSymbolInfo(qualifiedName(parts[1], pkg))
					info.Linkage = strings.ToLower(parts[2])
				} else {
					syntaxError()
				}
			case "//sigo:extern":
				if count == 3 {
					info := s.GetSymbolInfo(qualifiedName(parts[1], pkg))
					info.LinkName = parts[2]
					info.ExternalLinkage = true
				} else {
					syntaxError()
				}
			case "//go:linkname", "//sigo:linkname":
				if count == 2 || count == 3 {
					info := s.GetSymbolInfo(qualifiedName(parts[1], pkg))
					if count == 3 {
						info.LinkName = parts[2]
					}
					info.ExternalLinkage = true
				} else {
					syntaxError()
				}
			case "//go:export", "//sigo:export":
				if count == 3 {
					info := s.GetSymbolInfo(qualifiedName(parts[1], pkg))
					info.LinkName = parts[2]
					info.Exported = true
				} else {
					syntaxError()
				}
			}
		}
	}
	return err
}

func isPragma(s string) bool {
	return strings.HasPrefix(s, "//sigo:") || strings.HasPrefix(s, "//go:")
}
