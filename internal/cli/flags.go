package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	ProxyURL  string `long:"proxy-url" description:"Base URL of the AQI proxy (overrides AQIPRO_PROXY_URL)"`
	StatePath string `long:"state" description:"Path to the local state database (overrides AQIPRO_STATE_PATH)"`
	JSON      bool   `long:"json" description:"Output in JSON format"`
	Verbose   bool   `long:"verbose" description:"Enable verbose logging"`
	Version   bool   `long:"version" description:"Show version and exit"`
}

// LookupCommand resolves a query and renders the reading. With no
// query it repeats the last successful lookup, falling back to the
// configured default city.
type LookupCommand struct {
	Refresh bool `long:"refresh" description:"Bypass the local cache and fetch fresh data"`
	NoMap   bool `long:"no-map" description:"Skip the nearby stations list"`

	Positional struct {
		Query []string `positional-arg-name:"QUERY" description:"City name, @uid station ref, or geo:lat;lon"`
	} `positional-args:"yes"`

	globals *GlobalFlags
}

// SuggestCommand shows autocomplete suggestions for a query.
type SuggestCommand struct {
	Interactive bool `short:"i" long:"interactive" description:"Read queries line by line from stdin"`

	Positional struct {
		Query []string `positional-arg-name:"QUERY" description:"Partial city name"`
	} `positional-args:"yes"`

	globals *GlobalFlags
}

// FavoritesCommand lists or edits favorite locations.
type FavoritesCommand struct {
	Positional struct {
		Action string   `positional-arg-name:"ACTION" description:"add | remove (omit to list)"`
		Name   []string `positional-arg-name:"NAME" description:"Location name"`
	} `positional-args:"yes"`

	globals *GlobalFlags
}

// RecentsCommand lists recent searches.
type RecentsCommand struct {
	Clear bool `long:"clear" description:"Forget all recent searches"`

	globals *GlobalFlags
}

// CardCommand renders a shareable SVG card for a query.
type CardCommand struct {
	Out string `long:"out" description:"Output file path" default:"aqi-card.svg"`

	Positional struct {
		Query []string `positional-arg-name:"QUERY" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
}

// RefreshCommand refreshes cached readings for all favorites.
type RefreshCommand struct {
	Daemon   bool   `long:"daemon" description:"Keep running and refresh on a schedule"`
	Schedule string `long:"schedule" description:"Cron expression for --daemon (default @every 20m)"`

	globals *GlobalFlags
}

// StationsCommand lists monitoring stations inside a bounding box.
type StationsCommand struct {
	Bounds string `long:"bounds" required:"yes" description:"Bounding box as lat1,lon1,lat2,lon2"`

	globals *GlobalFlags
}
