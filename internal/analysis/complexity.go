package analysis

import (
	"go/ast"
	"go/parser"
	"go/token"
	"math"
)

// FunctionComplexity is the cyclomatic score of a single function.
type FunctionComplexity struct {
	Name       string `json:"name"`
	Complexity int    `json:"complexity"`
	Lines      int    `json:"lines"`
}

// ComplexityReport aggregates cyclomatic complexity for one file.
type ComplexityReport struct {
	File          string               `json:"file"`
	Total         int                  `json:"complexity"`
	Average       float64              `json:"avg_complexity"`
	Functions     []FunctionComplexity `json:"functions"`
	FunctionCount int                  `json:"function_count"`
	LineCount     int                  `json:"line_count"`
	Error         string               `json:"error,omitempty"`
}

// ComputeComplexity parses a Go file and scores each function: base 1 plus
// one per decision point (if, for, range, case, && and ||, select branch).
func ComputeComplexity(path string) ComplexityReport {
	report := ComplexityReport{File: path}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	ast.Inspect(file, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			return true
		}
		score := countBranches(fn.Body)
		start := fset.Position(fn.Pos())
		end := fset.Position(fn.End())
		report.Functions = append(report.Functions, FunctionComplexity{
			Name:       fn.Name.Name,
			Complexity: score,
			Lines:      end.Line - start.Line + 1,
		})
		report.Total += score
		return true
	})

	report.FunctionCount = len(report.Functions)
	if report.FunctionCount > 0 {
		report.Average = math.Round(float64(report.Total)/float64(report.FunctionCount)*100) / 100
	}
	if last := fset.Position(file.End()); last.IsValid() {
		report.LineCount = last.Line
	}

	return report
}

func countBranches(body *ast.BlockStmt) int {
	complexity := 1
	ast.Inspect(body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause,
			*ast.CommClause, *ast.TypeSwitchStmt:
			complexity++
		case *ast.BinaryExpr:
			if node.Op == token.LAND || node.Op == token.LOR {
				complexity++
			}
		}
		return true
	})
	return complexity
}
