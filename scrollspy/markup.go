package scrollspy

// Markup contract between the server-rendered guide page and the wasm client.
const (
	// PageID is the container htmx swaps on client-side navigation. Every
	// swap of it ends one page view and starts the next.
	PageID = "page"
	// RootID wraps the guide article inside the page container.
	RootID = "guide"
	// AttrActivationOffset and AttrHeaderClearance carry Options on the root.
	AttrActivationOffset = "data-activation-offset"
	AttrHeaderClearance  = "data-header-clearance"
	// AttrSection marks a section anchor; its value is the nav label.
	AttrSection = "data-section"
	// AttrTOCTarget marks a navigation entry; its value is a section id.
	AttrTOCTarget = "data-toc-target"
	// GraphsID is an application/json script holding the page's graphs.
	GraphsID = "guide-graphs"
	// CurrentClass is set on the navigation entry of the active section.
	CurrentClass = "is-current"
)
