// Package cli implements the aqipro command line client.
package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs.
type commands struct {
	Lookup    *LookupCommand
	Suggest   *SuggestCommand
	Favorites *FavoritesCommand
	Recents   *RecentsCommand
	Card      *CardCommand
	Refresh   *RefreshCommand
	Stations  *StationsCommand
}

// buildParser constructs the go-flags parser with all subcommands
// registered.
func buildParser() (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "aqipro"
	parser.LongDescription = "Air quality lookups, autocomplete, favorites, and share cards from the terminal."

	cmds := &commands{
		Lookup:    &LookupCommand{globals: &globals},
		Suggest:   &SuggestCommand{globals: &globals},
		Favorites: &FavoritesCommand{globals: &globals},
		Recents:   &RecentsCommand{globals: &globals},
		Card:      &CardCommand{globals: &globals},
		Refresh:   &RefreshCommand{globals: &globals},
		Stations:  &StationsCommand{globals: &globals},
	}

	parser.AddCommand("lookup", "Look up air quality for a place", "Resolve a city name, @uid station ref, or geo:lat;lon coordinate and render the current reading.", cmds.Lookup)
	parser.AddCommand("suggest", "Show autocomplete suggestions", "Show station suggestions for a partial city name.", cmds.Suggest)
	parser.AddCommand("favorites", "List or edit favorite locations", "List favorites, or add/remove one by name.", cmds.Favorites)
	parser.AddCommand("recents", "List recent searches", "List the most recent successful lookups.", cmds.Recents)
	parser.AddCommand("card", "Render a shareable SVG card", "Resolve a query and write a square SVG share card.", cmds.Card)
	parser.AddCommand("refresh", "Refresh cached favorite readings", "Fetch fresh readings for all favorites, once or on a schedule.", cmds.Refresh)
	parser.AddCommand("stations", "List stations in a bounding box", "List monitoring stations inside lat1,lon1,lat2,lon2.", cmds.Stations)

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	// --version is valid without a subcommand, which go-flags would
	// otherwise reject.
	for _, arg := range os.Args[1:] {
		if arg == "--" {
			break
		}
		if arg == "--version" {
			fmt.Printf("aqipro %s\n", version)
			return nil
		}
	}

	parser, _, _ := buildParser()

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}
