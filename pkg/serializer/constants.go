package serializer

// StdoutURI is the output path meaning standard output.
const StdoutURI = "-"

// noResults is printed by the table format for an empty result.
const noResults = "No results found."
