// Package noexit запрещает завершать процесс через os.Exit из функции
// main: сервис обязан гасить HTTP-сервер штатно, а прямой выход
// обрывает graceful shutdown.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

// Analyzer сообщает о вызовах os.Exit внутри main пакета main.
var Analyzer = &analysis.Analyzer{
	Name: "noexit",
	Doc:  "запрещает вызывать os.Exit в функции main пакета main",
	Run:  run,
}

// NewAnalyzer возвращает анализатор noexit.
func NewAnalyzer() *analysis.Analyzer {
	return Analyzer
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		checkFile(pass, file)
	}
	return nil, nil
}

func checkFile(pass *analysis.Pass, file *ast.File) {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || fn.Name.Name != "main" {
			continue
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if isOsExit(pass, call) {
				pass.Reportf(call.Pos(), "os.Exit в main обрывает корректное завершение сервиса")
			}
			return true
		})
	}
}

// isOsExit проверяет, что вызов действительно разрешается в os.Exit,
// а не в одноимённую функцию другого пакета.
func isOsExit(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	id, ok := sel.X.(*ast.Ident)
	if !ok || id.Name != "os" || sel.Sel.Name != "Exit" {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	return ok && fn.FullName() == "os.Exit"
}
