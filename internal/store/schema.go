package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS mortgages (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    property_address     TEXT,
    original_principal   REAL NOT NULL,
    current_balance      REAL NOT NULL,
    interest_rate        REAL NOT NULL,
    term_months          INTEGER NOT NULL,
    start_date           TEXT NOT NULL,
    payment_day          INTEGER,
    monthly_payment      REAL NOT NULL,
    extra_payment        REAL NOT NULL DEFAULT 0,
    escrow_amount        REAL NOT NULL DEFAULT 0,
    pmi_amount           REAL NOT NULL DEFAULT 0,
    is_active            INTEGER NOT NULL DEFAULT 1,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS retirement_accounts (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    account_type         TEXT NOT NULL,
    provider             TEXT,
    employer_name        TEXT,
    current_balance      REAL NOT NULL,
    contribution_amount  REAL NOT NULL DEFAULT 0,
    contribution_freq    TEXT NOT NULL,
    employer_match_pct   REAL NOT NULL DEFAULT 0,
    employer_match_limit REAL NOT NULL DEFAULT 0,
    vesting_pct          REAL NOT NULL DEFAULT 100,
    expected_return_rate REAL NOT NULL,
    asset_allocation     TEXT NOT NULL DEFAULT '[]',
    is_active            INTEGER NOT NULL DEFAULT 1,
    notes                TEXT,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contributions (
    id                   TEXT PRIMARY KEY,
    account_id           TEXT NOT NULL REFERENCES retirement_accounts(id) ON DELETE CASCADE,
    date                 TEXT NOT NULL,
    employee_amount      REAL NOT NULL DEFAULT 0,
    employer_amount      REAL NOT NULL DEFAULT 0,
    total_amount         REAL NOT NULL DEFAULT 0,
    balance_after        REAL NOT NULL DEFAULT 0,
    notes                TEXT,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contributions_account ON contributions(account_id, date);

CREATE TABLE IF NOT EXISTS categories (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    type                 TEXT NOT NULL,
    icon                 TEXT,
    color                TEXT,
    is_default           INTEGER NOT NULL DEFAULT 0,
    sort_order           INTEGER NOT NULL DEFAULT 0,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT PRIMARY KEY,
    type                 TEXT NOT NULL,
    amount               REAL NOT NULL,
    description          TEXT NOT NULL DEFAULT '',
    category_id          TEXT NOT NULL REFERENCES categories(id),
    date                 TEXT NOT NULL,
    is_recurring         INTEGER NOT NULL DEFAULT 0,
    recurring_id         TEXT,
    notes                TEXT,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id);
`
