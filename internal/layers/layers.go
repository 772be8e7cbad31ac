package layers

// ID identifies a base layer selection
type ID string

const (
	Street    ID = "street"
	Satellite ID = "satellite"
	Terrain   ID = "terrain"
	Topo      ID = "topo"
	Dark      ID = "dark"
	Hybrid    ID = "hybrid"
	Combined  ID = "combined"
	Custom    ID = "custom"
)

// Source describes a tile source and its optional labels overlay.
// LabelsURL is empty for layers that carry their own labels.
type Source struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	TileURL     string `json:"tile_url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
	LabelsURL   string `json:"labels_url,omitempty"`
}

// table is the fixed set of selectable base layers. Exactly one of these
// is attached to the map at a time.
var table = []Source{
	{
		ID:          Street,
		Name:        "Street",
		TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
		MaxZoom:     19,
	},
	{
		ID:          Satellite,
		Name:        "Satellite",
		TileURL:     "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "© Esri, Maxar, Earthstar Geographics",
		MaxZoom:     18,
	},
	{
		ID:          Terrain,
		Name:        "Terrain",
		TileURL:     "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, © CARTO",
		MaxZoom:     18,
	},
	{
		ID:          Topo,
		Name:        "Topographic",
		TileURL:     "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, SRTM | © OpenTopoMap",
		MaxZoom:     17,
	},
	{
		ID:          Dark,
		Name:        "Dark",
		TileURL:     "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, © CARTO",
		MaxZoom:     19,
	},
	{
		ID:          Hybrid,
		Name:        "Hybrid",
		TileURL:     "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "© Esri, Maxar, Earthstar Geographics",
		MaxZoom:     18,
		LabelsURL:   "https://server.arcgisonline.com/ArcGIS/rest/services/Reference/World_Boundaries_and_Places/MapServer/tile/{z}/{y}/{x}",
	},
	{
		ID:          Combined,
		Name:        "Combined",
		TileURL:     "https://{s}.basemaps.cartocdn.com/rastertiles/voyager_nolabels/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, © CARTO",
		MaxZoom:     18,
		LabelsURL:   "https://{s}.basemaps.cartocdn.com/rastertiles/voyager_only_labels/{z}/{x}/{y}.png",
	},
	{
		ID:          Custom,
		Name:        "Custom",
		TileURL:     "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, Humanitarian OSM Team",
		MaxZoom:     19,
	},
}

// Table returns the full layer table in display order
func Table() []Source {
	out := make([]Source, len(table))
	copy(out, table)
	return out
}

// Lookup returns the source for the given layer ID
func Lookup(id ID) (Source, bool) {
	for _, s := range table {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}
