package rearrange

// Stats represents high-level statistics of one detection run.
type Stats struct {
	// CaseQueries and ControlQueries count the queries parsed from each side
	// of the ":" separator.
	CaseQueries    int
	ControlQueries int
	// DroppedMismap counts alignments discarded by the mismap threshold.
	DroppedMismap int
	// DroppedUntyped counts case queries with no enabled rearrangement type.
	DroppedUntyped int
	// DroppedControlShared counts case queries subtracted by a control.
	DroppedControlShared int
	// DroppedLowCoverage counts case queries removed by the coverage filter.
	DroppedLowCoverage int
	// Links is the number of shared-rearrangement links between case queries.
	Links int
	// Clumps is the number of clumps emitted.
	Clumps int
	// ClumpsDropped is the number of first-level clumps (those with at least
	// minSeqs queries) minus the number emitted: clumps absorbed by the
	// second-level merge or removed for missing a case file. Components
	// smaller than minSeqs are not counted.
	ClumpsDropped int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.CaseQueries += o.CaseQueries
	s.ControlQueries += o.ControlQueries
	s.DroppedMismap += o.DroppedMismap
	s.DroppedUntyped += o.DroppedUntyped
	s.DroppedControlShared += o.DroppedControlShared
	s.DroppedLowCoverage += o.DroppedLowCoverage
	s.Links += o.Links
	s.Clumps += o.Clumps
	s.ClumpsDropped += o.ClumpsDropped
	return s
}
