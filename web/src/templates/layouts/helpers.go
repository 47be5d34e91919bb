package layouts

const siteName = "Guest map"

// CalculateTitle handles the conditional logic for the page title.
func CalculateTitle(title string) string {
	if title != "" {
		return title + " - " + siteName
	}
	return siteName
}

// AssetURL appends the asset version so browsers refetch changed files.
func AssetURL(path, version string) string {
	if version == "" {
		return path
	}
	return path + "?v=" + version
}
