// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package inference

import (
	"encoding/json"
	"log/slog"
)

// UnparseableFixMarker is the SuggestedFix value used when the model's
// reply could not be decoded as the expected structure.
const UnparseableFixMarker = "Could not parse specific fix from model output."

// parseDiagnosis decodes a successful backend reply.
//
// Description:
//
//	Two-stage parse. Stage one unwraps the backend envelope and decodes
//	its "response" payload as the structured Diagnosis; missing keys
//	default to zero values rather than erroring. Stage two, on any
//	decode failure, constructs the documented fallback: the entire raw
//	text becomes the diagnosis, the fix is the could-not-parse marker,
//	and the command list is empty. A parse failure never propagates as
//	an error.
func parseDiagnosis(body []byte, logger *slog.Logger) *Diagnosis {
	raw := string(body)

	var envelope generateResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		logger.Warn("backend reply was not a valid envelope, using raw text",
			slog.String("error", err.Error()),
		)
		return fallbackDiagnosis(raw)
	}

	var diag Diagnosis
	if err := json.Unmarshal([]byte(envelope.Response), &diag); err != nil {
		// The model chatted instead of returning JSON.
		logger.Warn("model output was not the expected JSON, using raw text",
			slog.String("error", err.Error()),
		)
		return fallbackDiagnosis(envelope.Response)
	}
	return &diag
}

// fallbackDiagnosis wraps unparseable model text in a valid Diagnosis.
func fallbackDiagnosis(text string) *Diagnosis {
	return &Diagnosis{
		Diagnosis:    text,
		SuggestedFix: UnparseableFixMarker,
		Commands:     nil,
	}
}

// errorDiagnosis wraps a round-trip failure description in a valid
// Diagnosis.
func errorDiagnosis(text string) *Diagnosis {
	return &Diagnosis{
		Diagnosis:    text,
		SuggestedFix: "N/A",
		Commands:     nil,
	}
}
