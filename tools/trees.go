/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tools

import (
	"fmt"

	"bennypowers.dev/nexus/block"
	"bennypowers.dev/nexus/document"
	"bennypowers.dev/nexus/tokenizer"
)

// RenameTree relabels a tree. The tree's newick text and the block's
// TRANSLATE table are kept as written.
func RenameTree(doc *document.Document, from, to string) error {
	var rewrites []rewrite
	counts := make(map[string]int)
	found := false
	for _, b := range doc.Blocks() {
		index := counts[b.Name()]
		counts[b.Name()]++
		if b.Name() != "TREES" {
			continue
		}
		tr, err := block.ParseTrees(b)
		if err != nil {
			return err
		}
		var trees []*block.Tree
		changed := false
		for _, t := range tr.Trees() {
			if tokenizer.EqualLabels(t.Name, from) {
				renamed := *t
				renamed.Name = to
				trees = append(trees, &renamed)
				changed = true
				continue
			}
			trees = append(trees, t)
		}
		if !changed {
			continue
		}
		found = true
		cmds, err := block.NewTrees(trees, translateOrder(tr), carryOptions(b))
		if err != nil {
			return err
		}
		rewrites = append(rewrites, rewrite{b.Name(), index, cmds})
	}
	if !found {
		return fmt.Errorf("tree %q not found", from)
	}
	return applyRewrites(doc, rewrites)
}
