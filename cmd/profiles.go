package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/McNamara84/ernie-sub002/mapping"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage column mapping profiles",
	Long:  `List and inspect the column mapping profiles used for batch ingestion.`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := mapping.NewProfileRegistry()
		if err != nil {
			return err
		}

		profiles := registry.List()
		if len(profiles) == 0 {
			fmt.Println("No profiles found")
			return nil
		}

		fmt.Println("Available profiles:")
		for _, name := range profiles {
			profile, _ := registry.Get(name)
			desc := ""
			if profile.Description != "" {
				desc = " - " + profile.Description
			}
			fmt.Printf("  %s%s\n", name, desc)
		}

		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileName := args[0]

		registry, err := mapping.NewProfileRegistry()
		if err != nil {
			return err
		}

		profile, ok := registry.Get(profileName)
		if !ok {
			return fmt.Errorf("unknown profile: %s", profileName)
		}

		// Print as YAML
		out, err := yaml.Marshal(profile)
		if err != nil {
			return err
		}

		fmt.Println(string(out))
		return nil
	},
}

var profilesFieldsCmd = &cobra.Command{
	Use:   "fields [profile]",
	Short: "List columns in a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileName := args[0]

		registry, err := mapping.NewProfileRegistry()
		if err != nil {
			return err
		}

		profile, ok := registry.Get(profileName)
		if !ok {
			return fmt.Errorf("unknown profile: %s", profileName)
		}

		headers := make([]string, 0, len(profile.Columns))
		for header := range profile.Columns {
			headers = append(headers, header)
		}
		sort.Strings(headers)

		fmt.Printf("Columns in %s profile:\n\n", profileName)
		fmt.Printf("%-30s -> %-22s %s\n", "Column", "Field", "Notes")
		fmt.Printf("%-30s    %-22s %s\n", "------", "-----", "-----")

		for _, header := range headers {
			m := profile.Columns[header]
			fmt.Printf("%-30s -> %-22s %s\n", header, m.Field, columnNotes(m))
		}

		return nil
	},
}

func columnNotes(m mapping.ColumnMapping) string {
	var notes []string
	if m.TitleType != "" {
		notes = append(notes, "title:"+m.TitleType)
	}
	if m.DescriptionType != "" {
		notes = append(notes, "description:"+m.DescriptionType)
	}
	if m.DateType != "" {
		note := "date:" + m.DateType
		if m.Part != "" {
			note += "/" + string(m.Part)
		}
		notes = append(notes, note)
	}
	if m.SizeType != "" || m.Unit != "" {
		notes = append(notes, fmt.Sprintf("size:%s[%s]", m.SizeType, m.Unit))
	}
	if m.MultiValue {
		notes = append(notes, "multi-value")
	}
	if m.Required {
		notes = append(notes, "required")
	}
	return strings.Join(notes, ", ")
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesFieldsCmd)
}
