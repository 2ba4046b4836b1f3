package mssql

import (
	"context"
	"database/sql"

	"github.com/koustreak/dbadmin/internal/logger"
)

// logDiagnostics records everything still attached to the database before
// it is dropped: open transactions, held locks, blocking chains, and the
// statements that ran against it most recently. Each sweep is best-effort;
// a failing query is logged and skipped so the drop itself still proceeds.
func logDiagnostics(ctx context.Context, db *sql.DB, name string, log *logger.Logger) {
	logActiveTransactions(ctx, db, name, log)
	logHeldLocks(ctx, db, name, log)
	logBlockingChains(ctx, db, name, log)
	logRecentQueries(ctx, db, name, log)
}

// --- Active transactions ---

func logActiveTransactions(ctx context.Context, db *sql.DB, name string, log *logger.Logger) {
	const q = `
		SELECT
			at.transaction_id,
			at.name,
			at.transaction_type,
			at.transaction_state,
			at.transaction_status,
			at.transaction_begin_time,
			s.session_id,
			s.login_name,
			s.host_name,
			s.program_name,
			r.status,
			r.command,
			t.text
		FROM sys.dm_tran_active_transactions AS at
		JOIN sys.dm_tran_session_transactions AS st ON st.transaction_id = at.transaction_id
		JOIN sys.dm_exec_sessions AS s ON s.session_id = st.session_id
		LEFT JOIN sys.dm_exec_requests AS r ON r.session_id = s.session_id
		OUTER APPLY sys.dm_exec_sql_text(r.sql_handle) AS t
		WHERE s.database_id = DB_ID(@p1)`

	rows, err := db.QueryContext(ctx, q, name)
	if err != nil {
		log.WarnWith("transaction sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			txID      int64
			txName    sql.NullString
			txType    sql.NullInt64
			txState   sql.NullInt64
			txStatus  sql.NullInt64
			begin     sql.NullTime
			sessionID int64
			login     sql.NullString
			host      sql.NullString
			program   sql.NullString
			reqStatus sql.NullString
			command   sql.NullString
			stmt      sql.NullString
		)
		if err := rows.Scan(&txID, &txName, &txType, &txState, &txStatus, &begin,
			&sessionID, &login, &host, &program, &reqStatus, &command, &stmt); err != nil {
			log.WarnWith("transaction sweep scan failed", map[string]interface{}{"error": err.Error()})
			return
		}
		count++
		log.InfoWith("open transaction", map[string]interface{}{
			"transaction_id":     txID,
			"name":               txName.String,
			"transaction_type":   txType.Int64,
			"transaction_state":  txState.Int64,
			"transaction_status": txStatus.Int64,
			"begin_time":         begin.Time,
			"session_id":         sessionID,
			"login_name":         login.String,
			"host_name":          host.String,
			"program_name":       program.String,
			"request_status":     reqStatus.String,
			"command":            command.String,
			"statement":          stmt.String,
		})
	}
	if err := rows.Err(); err != nil {
		log.WarnWith("transaction sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	log.InfoWith("transaction sweep done", map[string]interface{}{"open_transactions": count})
}

// --- Held locks ---

func logHeldLocks(ctx context.Context, db *sql.DB, name string, log *logger.Logger) {
	const q = `
		SELECT
			request_session_id,
			resource_type,
			resource_description,
			request_mode,
			request_status
		FROM sys.dm_tran_locks
		WHERE resource_database_id = DB_ID(@p1)`

	rows, err := db.QueryContext(ctx, q, name)
	if err != nil {
		log.WarnWith("lock sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			sessionID int64
			resType   sql.NullString
			resDesc   sql.NullString
			mode      sql.NullString
			status    sql.NullString
		)
		if err := rows.Scan(&sessionID, &resType, &resDesc, &mode, &status); err != nil {
			log.WarnWith("lock sweep scan failed", map[string]interface{}{"error": err.Error()})
			return
		}
		count++
		log.InfoWith("held lock", map[string]interface{}{
			"session_id":           sessionID,
			"resource_type":        resType.String,
			"resource_description": resDesc.String,
			"request_mode":         mode.String,
			"request_status":       status.String,
		})
	}
	if err := rows.Err(); err != nil {
		log.WarnWith("lock sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	log.InfoWith("lock sweep done", map[string]interface{}{"held_locks": count})
}

// --- Blocking chains ---

func logBlockingChains(ctx context.Context, db *sql.DB, name string, log *logger.Logger) {
	const q = `
		SELECT
			r.session_id,
			r.blocking_session_id,
			r.wait_type,
			r.wait_time,
			t.text
		FROM sys.dm_exec_requests AS r
		OUTER APPLY sys.dm_exec_sql_text(r.sql_handle) AS t
		WHERE r.database_id = DB_ID(@p1) AND r.blocking_session_id <> 0`

	rows, err := db.QueryContext(ctx, q, name)
	if err != nil {
		log.WarnWith("blocking sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			sessionID  int64
			blockedBy  int64
			waitType   sql.NullString
			waitMillis int64
			stmt       sql.NullString
		)
		if err := rows.Scan(&sessionID, &blockedBy, &waitType, &waitMillis, &stmt); err != nil {
			log.WarnWith("blocking sweep scan failed", map[string]interface{}{"error": err.Error()})
			return
		}
		count++
		log.InfoWith("blocked session", map[string]interface{}{
			"session_id":          sessionID,
			"blocking_session_id": blockedBy,
			"wait_type":           waitType.String,
			"wait_time_ms":        waitMillis,
			"statement":           stmt.String,
		})
	}
	if err := rows.Err(); err != nil {
		log.WarnWith("blocking sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	log.InfoWith("blocking sweep done", map[string]interface{}{"blocked_sessions": count})
}

// --- Recent statements ---

func logRecentQueries(ctx context.Context, db *sql.DB, name string, log *logger.Logger) {
	const q = `
		SELECT TOP 20
			qs.last_execution_time,
			qs.execution_count,
			t.text
		FROM sys.dm_exec_query_stats AS qs
		CROSS APPLY sys.dm_exec_sql_text(qs.sql_handle) AS t
		WHERE t.dbid = DB_ID(@p1)
		ORDER BY qs.last_execution_time DESC`

	rows, err := db.QueryContext(ctx, q, name)
	if err != nil {
		log.WarnWith("recent query sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			lastRun    sql.NullTime
			executions int64
			stmt       sql.NullString
		)
		if err := rows.Scan(&lastRun, &executions, &stmt); err != nil {
			log.WarnWith("recent query sweep scan failed", map[string]interface{}{"error": err.Error()})
			return
		}
		count++
		log.InfoWith("recent statement", map[string]interface{}{
			"last_execution_time": lastRun.Time,
			"execution_count":     executions,
			"statement":           stmt.String,
		})
	}
	if err := rows.Err(); err != nil {
		log.WarnWith("recent query sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	log.InfoWith("recent query sweep done", map[string]interface{}{"statements": count})
}
