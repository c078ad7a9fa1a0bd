package store

const createTableSQL = `
CREATE TABLE IF NOT EXISTS reports (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id        TEXT NOT NULL,
    hostname      TEXT NOT NULL,
    category      TEXT NOT NULL,
    report        TEXT NOT NULL,
    failed        INTEGER NOT NULL DEFAULT 0,
    collected_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_run_id ON reports(run_id);
CREATE INDEX IF NOT EXISTS idx_reports_category ON reports(category);
CREATE INDEX IF NOT EXISTS idx_reports_collected_at ON reports(collected_at);
`
