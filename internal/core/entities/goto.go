package entities

import (
	"context"

	perr "bgcapi/internal/platform/errors"
)

// Destination is where a "jump to a record" request should redirect,
// combining the resolved assembly with the (sanitised, optional) region
// fragment the caller asked to land on.
type Destination struct {
	AssemblyID string
	Region     string
}

// Resolve sanitises identifier and region, then asks resolver for the
// assembly it names. Grounded on go.rs's goto handler, which sanitises
// both path segments before resolving.
func Resolve(ctx context.Context, resolver CanonicalResolver, rawID, rawRegion string) (Destination, error) {
	id := SanitiseID(rawID)
	if id == "" {
		return Destination{}, perr.InvalidArgf("empty identifier")
	}

	assemblyID, ok, err := resolver.ResolveAssembly(ctx, id)
	if err != nil {
		return Destination{}, err
	}
	if !ok {
		return Destination{}, perr.NotFoundf("no record found for identifier %q", rawID)
	}

	region := ""
	if rawRegion != "" {
		region = SanitiseRegion(rawRegion)
	}
	return Destination{AssemblyID: assemblyID, Region: region}, nil
}
