package tools

// Annotation hints advertised in tools/list. Outline tools never reach
// outside the local machine, so openWorldHint is always false.
func annotations(readOnly, destructive, idempotent bool) map[string]bool {
	return map[string]bool{
		"readOnlyHint":    readOnly,
		"destructiveHint": destructive,
		"idempotentHint":  idempotent,
		"openWorldHint":   false,
	}
}

func ReadOnlyAnnotations() map[string]bool {
	return annotations(true, false, true)
}

// DestructiveAnnotations marks tools that remove stored snapshots.
func DestructiveAnnotations() map[string]bool {
	return annotations(false, true, false)
}

func SafeWriteAnnotations() map[string]bool {
	return annotations(false, false, true)
}

// NonIdempotentWriteAnnotations marks tools that append a new snapshot on
// every call.
func NonIdempotentWriteAnnotations() map[string]bool {
	return annotations(false, false, false)
}
