package comparippson

import (
	"encoding/json"
	"os"

	"bgcapi/internal/core/jobmodel"
	perr "bgcapi/internal/platform/errors"
)

// LoadMetadata reads the CompaRiPPson reference dictionary from a
// metadata.json file (a flat array of entries) and indexes it by
// accession for Handler.Metadata. Grounded on jobs/comparippson.rs's
// startup load of the MIBiG RiPP metadata table.
func LoadMetadata(path string) (*jobmodel.Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.IOf("read comparippson metadata %s: %v", path, err)
	}

	var entries []jobmodel.MetadataEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, perr.JSONErrf("decode comparippson metadata %s: %v", path, err)
	}

	byAccession := make(map[string]jobmodel.MetadataEntry, len(entries))
	for _, e := range entries {
		byAccession[e.Accession] = e
	}
	return jobmodel.NewMetadata(byAccession), nil
}
