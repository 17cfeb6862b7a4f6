// Command inspect prints a template's layouts and placeholder inventories,
// for writing layout mappings against third-party decks.
//
//	inspect corporate.pptx
//	inspect            (built-in deck)
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/genslides/genslides/pptx"
)

func main() {
	flag.Parse()

	var (
		doc *pptx.Document
		err error
	)
	if flag.NArg() > 0 {
		doc, err = pptx.OpenTemplate(flag.Arg(0))
	} else {
		doc, err = pptx.New()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(1)
	}

	for i, layout := range doc.Layouts() {
		fmt.Printf("%d: %s\n", i, layout.Name)
		for _, ph := range layout.Placeholders {
			fmt.Printf("   idx=%-3d %s\n", ph.Index, ph.Role)
		}
	}
}
