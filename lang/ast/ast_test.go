// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probechain/lupy/lang/token"
)

func ident(name string, col int) *Node {
	return NewNode(token.IdentifierSymbol, NewLeaf(token.IdentifierSymbol, token.New(token.Identifier, name, 0, col)))
}

func comma(col int) *Node {
	return NewLeaf(",", token.New(token.Divider, ",", 0, col))
}

// parameters builds the left-recursive list for "a, b, c".
func parameters() *Node {
	one := NewNode("<parameters>", ident("a", 0))
	two := NewNode("<parameters>", one, comma(1), ident("b", 3))
	return NewNode("<parameters>", two, comma(4), ident("c", 6))
}

func TestItems(t *testing.T) {
	items := parameters().Items()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, items[i].First().Content)
	}
}

func TestLeaves(t *testing.T) {
	var contents []string
	for _, tok := range parameters().Leaves() {
		contents = append(contents, tok.Content)
	}
	assert.Equal(t, []string{"a", ",", "b", ",", "c"}, contents)
	assert.Equal(t, "a , b , c", parameters().Text())
}

func TestString(t *testing.T) {
	n := NewNode("<atom>", ident("x", 0))
	assert.Equal(t, "(<atom> (<Identifier> x))", n.String())
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, NewNode("<atom>", ident("x", 2))); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	assert.Equal(t, "<atom>\n  <Identifier>\n    \"x\" @1:3\n", buf.String())
}

func TestAccessors(t *testing.T) {
	n := parameters()
	assert.True(t, n.Is("<parameters>"))
	assert.Nil(t, n.Child(5))
	assert.True(t, n.HasLeaf(","))
	assert.Equal(t, token.IdentifierSymbol, n.Find(token.IdentifierSymbol).Label)
	assert.Nil(t, n.Find("<missing>"))
	assert.Nil(t, NewNode("<empty>").First())
}

func TestFlatten(t *testing.T) {
	var labels []string
	for _, c := range parameters().Flatten() {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{token.IdentifierSymbol, ",", token.IdentifierSymbol, ",", token.IdentifierSymbol}, labels)
}
