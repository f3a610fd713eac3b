package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoFilesSkipsExcludedDirs(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "main.go", "package main\n")
	writeTestFile(t, dir, "pkg/util.go", "package pkg\n")
	writeTestFile(t, dir, "node_modules/dep.go", "package dep\n")
	writeTestFile(t, dir, "_vendor/v.go", "package v\n")
	writeTestFile(t, dir, "notes.txt", "not go")

	w := NewWalker(nil)
	files, err := w.GoFiles(dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.go", "pkg/util.go"}, files)
}

func TestWalkerGlobExclusions(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "main.go", "package main\n")
	writeTestFile(t, dir, "gencache/x.go", "package x\n")

	w := NewWalker([]string{"*cache"})
	files, err := w.GoFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, files)
}

func TestDirectoryTreeSkipsBinaries(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "main.go", "package main\n")
	writeTestFile(t, dir, "bin/app.exe", "binary")
	writeTestFile(t, dir, "README.md", "docs")

	w := NewWalker(nil)
	tree, err := w.DirectoryTree(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, tree.FileCount)
	assert.NotContains(t, tree.Files, "bin/app.exe")
}

func TestReadFileInBandErrors(t *testing.T) {
	missing := ReadFile("/no/such/file")
	assert.False(t, missing.Exists)
	assert.NotEmpty(t, missing.Error)

	path := writeTestFile(t, t.TempDir(), "a.txt", "one\ntwo")
	info := ReadFile(path)
	assert.True(t, info.Exists)
	assert.Equal(t, 2, info.Lines)
}

func TestDependencyGraphResolvesIntraRepoImports(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "go.mod", "module example.com/app\n")
	writeTestFile(t, dir, "main.go", `package main

import "example.com/app/util"

var _ = util.X
`)
	writeTestFile(t, dir, "util/util.go", "package util\n\nvar X = 1\n")

	w := NewWalker(nil)
	graph, err := w.DependencyGraph(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, graph.NodeCount)
	require.Equal(t, 1, graph.EdgeCount)
	assert.Equal(t, "main.go", graph.Edges[0].From)
	assert.Equal(t, "util/util.go", graph.Edges[0].To)
}

func TestDetectDeadCodeFlagsSingleUseNames(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", `package p

func used() int { return 1 }

func orphan() int { return 2 }
`)
	writeTestFile(t, dir, "b.go", `package p

var _ = used()
`)

	w := NewWalker(nil)
	report, err := w.DetectDeadCode(dir)
	require.NoError(t, err)

	assert.Contains(t, report.UnusedFunctions, "orphan")
	assert.Equal(t, 2, report.TotalFunctions)
}

func TestDetectDuplicatesFindsSharedBlocks(t *testing.T) {
	block := `x := compute(1)
y := compute(2)
z := compute(3)
total := x + y + z
report(total)`

	dir := t.TempDir()
	writeTestFile(t, dir, "one.go", "package p\n\nfunc one() {\n"+block+"\n}\n")
	writeTestFile(t, dir, "two.go", "package p\n\nfunc two() {\n"+block+"\n}\n")

	w := NewWalker(nil)
	report, err := w.DetectDuplicates(dir, 5)
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalPairs)
	assert.Equal(t, "one.go", report.Pairs[0].File1)
	assert.Equal(t, "two.go", report.Pairs[0].File2)
	assert.NotEmpty(t, report.Pairs[0].Blocks)
	assert.Greater(t, report.Pairs[0].Similarity, 0.5)
}

func TestDetectDuplicatesIgnoresCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", "package p\n\n// comment only\n\nfunc a() {}\n")
	writeTestFile(t, dir, "b.go", "package p\n\n// different comment\n\nfunc b() {}\n")

	w := NewWalker(nil)
	report, err := w.DetectDuplicates(dir, 3)
	require.NoError(t, err)
	assert.Zero(t, report.TotalPairs)
}
