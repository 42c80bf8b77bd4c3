package seed

// File is the native seed format:
//
//	bookmarks:
//	  - title: Go
//	    url: https://go.dev
//	    description: The Go website
//	    rating: 5
type File struct {
	Bookmarks []map[string]any `yaml:"bookmarks"`
}

// HomepageEntry is a single bookmark in a Homepage bookmarks.yaml.
type HomepageEntry struct {
	Icon        string `yaml:"icon"`
	Abbr        string `yaml:"abbr"`
	Href        string `yaml:"href"`
	Description string `yaml:"description"`
}

// HomepageCategory maps a category name to its bookmarks. Each bookmark name maps to a
// list holding a single entry.
type HomepageCategory map[string][]map[string][]HomepageEntry

// HomepageConfig is the root of a Homepage bookmarks.yaml.
type HomepageConfig []HomepageCategory
