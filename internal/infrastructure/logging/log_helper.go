package logging

// logParamsToZapParams flattens extras into zap's alternating
// key/value form.
func logParamsToZapParams(extra map[ExtraKey]any) []any {
	params := make([]any, 0, len(extra)*2)

	for k, v := range extra {
		params = append(params, string(k), v)
	}

	return params
}

func logParamsToZeroParams(extra map[ExtraKey]any) map[string]any {
	params := make(map[string]any, len(extra))

	for k, v := range extra {
		params[string(k)] = v
	}

	return params
}
