package sqlstore

// The schemas differ only in column types and auto-increment syntax. miqaat_members cascades from
// both parents so that deleting an event removes its membership rows.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id BIGSERIAL PRIMARY KEY,
		profile TEXT NULL,
		its_id VARCHAR(32) NOT NULL UNIQUE,
		member_rank VARCHAR(64) NOT NULL DEFAULT '',
		roles INTEGER NULL,
		jamiyat VARCHAR(128) NULL,
		jamaat VARCHAR(128) NULL,
		full_name VARCHAR(255) NOT NULL,
		gender VARCHAR(16) NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		age INTEGER NULL,
		contact VARCHAR(64) NULL,
		password_hash TEXT NULL,
		new_password_hash TEXT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS members_jamaat_active_idx ON members (jamaat, is_active)`,
	`CREATE TABLE IF NOT EXISTS captains (
		id BIGSERIAL PRIMARY KEY,
		its_number VARCHAR(32) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NULL,
		password_hash TEXT NULL,
		new_password_hash TEXT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS local_miqaat (
		id BIGSERIAL PRIMARY KEY,
		miqaat_name VARCHAR(255) NOT NULL,
		jamaat VARCHAR(128) NOT NULL,
		jamiyat VARCHAR(128) NOT NULL,
		from_date DATE NOT NULL,
		till_date DATE NOT NULL,
		volunteer_limit INTEGER NOT NULL DEFAULT 0,
		about_miqaat TEXT NULL,
		admin_approval VARCHAR(16) NOT NULL DEFAULT 'Pending',
		captain_name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS local_miqaat_captain_idx ON local_miqaat (captain_name)`,
	`CREATE TABLE IF NOT EXISTS miqaat_members (
		member_id BIGINT NOT NULL REFERENCES members (id) ON DELETE CASCADE,
		miqaat_id BIGINT NOT NULL REFERENCES local_miqaat (id) ON DELETE CASCADE,
		status VARCHAR(16) NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (member_id, miqaat_id)
	)`,
	`CREATE INDEX IF NOT EXISTS miqaat_members_miqaat_idx ON miqaat_members (miqaat_id)`,
	`CREATE TABLE IF NOT EXISTS member_snapshots (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		display_name VARCHAR(255) NOT NULL,
		role VARCHAR(64) NOT NULL,
		last_login TIMESTAMPTZ NOT NULL
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		profile TEXT NULL,
		its_id VARCHAR(32) NOT NULL,
		member_rank VARCHAR(64) NOT NULL DEFAULT '',
		roles INT NULL,
		jamiyat VARCHAR(128) NULL,
		jamaat VARCHAR(128) NULL,
		full_name VARCHAR(255) NOT NULL,
		gender VARCHAR(16) NULL,
		email VARCHAR(255) NOT NULL,
		age INT NULL,
		contact VARCHAR(64) NULL,
		password_hash TEXT NULL,
		new_password_hash TEXT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY members_its_id_unique (its_id),
		UNIQUE KEY members_email_unique (email),
		KEY members_jamaat_active_idx (jamaat, is_active)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS captains (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		its_number VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NULL,
		password_hash TEXT NULL,
		new_password_hash TEXT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY captains_its_number_unique (its_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS local_miqaat (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		miqaat_name VARCHAR(255) NOT NULL,
		jamaat VARCHAR(128) NOT NULL,
		jamiyat VARCHAR(128) NOT NULL,
		from_date DATE NOT NULL,
		till_date DATE NOT NULL,
		volunteer_limit INT NOT NULL DEFAULT 0,
		about_miqaat TEXT NULL,
		admin_approval VARCHAR(16) NOT NULL DEFAULT 'Pending',
		captain_name VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		KEY local_miqaat_captain_idx (captain_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS miqaat_members (
		member_id BIGINT NOT NULL,
		miqaat_id BIGINT NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'Pending',
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (member_id, miqaat_id),
		KEY miqaat_members_miqaat_idx (miqaat_id),
		CONSTRAINT miqaat_members_member_fk FOREIGN KEY (member_id) REFERENCES members (id) ON DELETE CASCADE,
		CONSTRAINT miqaat_members_miqaat_fk FOREIGN KEY (miqaat_id) REFERENCES local_miqaat (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS member_snapshots (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		display_name VARCHAR(255) NOT NULL,
		role VARCHAR(64) NOT NULL,
		last_login DATETIME(6) NOT NULL,
		UNIQUE KEY member_snapshots_email_unique (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile TEXT NULL,
		its_id TEXT NOT NULL UNIQUE,
		member_rank TEXT NOT NULL DEFAULT '',
		roles INTEGER NULL,
		jamiyat TEXT NULL,
		jamaat TEXT NULL,
		full_name TEXT NOT NULL,
		gender TEXT NULL,
		email TEXT NOT NULL UNIQUE,
		age INTEGER NULL,
		contact TEXT NULL,
		password_hash TEXT NULL,
		new_password_hash TEXT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS members_jamaat_active_idx ON members (jamaat, is_active)`,
	`CREATE TABLE IF NOT EXISTS captains (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		its_number TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NULL,
		password_hash TEXT NULL,
		new_password_hash TEXT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS local_miqaat (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		miqaat_name TEXT NOT NULL,
		jamaat TEXT NOT NULL,
		jamiyat TEXT NOT NULL,
		from_date TEXT NOT NULL,
		till_date TEXT NOT NULL,
		volunteer_limit INTEGER NOT NULL DEFAULT 0,
		about_miqaat TEXT NULL,
		admin_approval TEXT NOT NULL DEFAULT 'Pending',
		captain_name TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS local_miqaat_captain_idx ON local_miqaat (captain_name)`,
	`CREATE TABLE IF NOT EXISTS miqaat_members (
		member_id INTEGER NOT NULL REFERENCES members (id) ON DELETE CASCADE,
		miqaat_id INTEGER NOT NULL REFERENCES local_miqaat (id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'Pending',
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (member_id, miqaat_id)
	)`,
	`CREATE INDEX IF NOT EXISTS miqaat_members_miqaat_idx ON miqaat_members (miqaat_id)`,
	`CREATE TABLE IF NOT EXISTS member_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL,
		last_login TEXT NOT NULL
	)`,
}
