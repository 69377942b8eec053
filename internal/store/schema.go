package store

// schemaVersion is stored in PRAGMA user_version once the defaults are seeded.
const schemaVersion = 2

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dispensaries (
    name      TEXT PRIMARY KEY COLLATE NOCASE,
    url       TEXT NOT NULL,
    position  INTEGER NOT NULL,
    added_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS resources (
    label     TEXT PRIMARY KEY COLLATE NOCASE,
    url       TEXT NOT NULL,
    position  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dispensaries_position ON dispensaries(position);
CREATE INDEX IF NOT EXISTS idx_resources_position ON resources(position);
`

// Seeded on first open. Users may remove or replace any of these afterwards.
var (
	defaultDispensaries = []Link{
		{Name: "Sunnyside", URL: "https://www.sunnyside.shop"},
		{Name: "Curaleaf", URL: "https://curaleaf.com"},
		{Name: "Trulieve", URL: "https://www.trulieve.com"},
	}

	defaultResources = []Link{
		{Name: "Florida MMU Registry", URL: "https://mmuregistry.flhealth.gov/"},
		{Name: "NORML Florida Chapter", URL: "https://norml.org/florida/"},
		{Name: "MMJ Health", URL: "https://mmjhealth.com/"},
	}

	// Added in version 2; appended after whatever the user already has.
	footerResources = []Link{
		{Name: "Privacy & Terms", URL: "https://moondogdevelopment.com/privacy"},
		{Name: "Moondog Development", URL: "https://moondogdevelopment.com"},
	}
)
