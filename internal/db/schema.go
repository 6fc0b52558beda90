package db

// SchemaSQL defines the SurrealDB table holding serialised records.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS record SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS value ON record TYPE string;
    DEFINE FIELD IF NOT EXISTS updated_at ON record TYPE datetime DEFAULT time::now();
`
