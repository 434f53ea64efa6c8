package driver

const (
	UpsertTaxonomyQuery = `
		MERGE (d:Taxonomy {id: $id})
		SET d.major = $major,
			d.minor = $minor,
			d.payload = $payload,
			d.updated_at = $updated_at
		RETURN d.id AS id
	`

	LatestTaxonomyQuery = `
		MATCH (d:Taxonomy)
		RETURN d.payload AS payload
		ORDER BY d.major DESC, d.minor DESC
		LIMIT 1
	`

	TaxonomyByIDQuery = `
		MATCH (d:Taxonomy {id: $id})
		RETURN d.payload AS payload
	`

	UpsertAnalysisQuery = `
		MERGE (a:Analysis {id: $id})
		SET a.payload = $payload,
			a.updated_at = $updated_at
		RETURN a.id AS id
	`

	AnalysisByIDQuery = `
		MATCH (a:Analysis {id: $id})
		RETURN a.payload AS payload
	`

	UpsertTranscriptQuery = `
		MERGE (t:Transcript {id: $id})
		SET t.payload = $payload,
			t.updated_at = $updated_at
		RETURN t.id AS id
	`

	TranscriptByIDQuery = `
		MATCH (t:Transcript {id: $id})
		RETURN t.payload AS payload
	`
)
