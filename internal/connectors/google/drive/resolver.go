package drive

// ResolveWebURL returns the browser link for a Drive file.
// A link reported by the API wins; otherwise the generic viewer URL is built from the id.
func ResolveWebURL(fileID, webLink string) string {
	if webLink != "" {
		return webLink
	}
	if fileID == "" {
		return ""
	}
	return "https://drive.google.com/file/d/" + fileID + "/view"
}
