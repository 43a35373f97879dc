package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/McNamara84/ernie-sub002/format"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List registered formats",
	Long:  `List every registered format with its capabilities and file extensions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := format.DefaultRegistry.List()
		if len(names) == 0 {
			fmt.Println("No formats registered")
			return nil
		}

		fmt.Printf("%-15s %-10s %-6s %s\n", "Format", "Direction", "Ext", "Description")
		fmt.Printf("%-15s %-10s %-6s %s\n", "------", "---------", "---", "-----------")
		for _, name := range names {
			f, _ := format.Get(name)

			var caps []string
			if _, ok := f.(format.Parser); ok {
				caps = append(caps, "read")
			}
			if _, ok := f.(format.Serializer); ok {
				caps = append(caps, "write")
			}

			fmt.Printf("%-15s %-10s %-6s %s\n",
				name,
				strings.Join(caps, "+"),
				strings.Join(f.Extensions(), ","),
				f.Description())
		}

		return nil
	},
}
