package main

import (
	"github.com/McNamara84/ernie-sub002/cmd"

	// Register format plugins
	_ "github.com/McNamara84/ernie-sub002/format/datacite"
	_ "github.com/McNamara84/ernie-sub002/format/graphjson"
	_ "github.com/McNamara84/ernie-sub002/format/igsncsv"
)

func main() {
	cmd.Execute()
}
