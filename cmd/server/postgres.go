package main

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createPlayerTable = `
CREATE TABLE IF NOT EXISTS player (
	player_id 		bigint 	GENERATED ALWAYS AS IDENTITY
							PRIMARY KEY,
	username 		text 	UNIQUE NOT NULL,
	password_hash 	bytea 	NOT NULL,
	created_at 		timestamp with time zone
							DEFAULT now()
							NOT NULL
);`
	createGameSessionTable = `
CREATE TABLE IF NOT EXISTS game_session (
	game_session_id	bigint 	GENERATED ALWAYS AS IDENTITY
							PRIMARY KEY,
	player_id		bigint	REFERENCES player (player_id)
							NULL,
	height			integer	NOT NULL,
	width			integer	NOT NULL,
	mine_count		integer	NOT NULL,
	status			text	NOT NULL,
	move_count		integer	NOT NULL,
	started_at		timestamp with time zone
							DEFAULT now()
							NOT NULL,
	ended_at		timestamp with time zone
							NULL,
	state			bytea	NOT NULL
);`
	initSql = createPlayerTable + createGameSessionTable
)

type Player struct {
	PlayerId     int64
	Username     string
	PasswordHash []byte
}

type postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dbUrl string) (*postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dbUrl)
	if err != nil {
		return nil, err
	}
	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(ctx, initSql); err != nil {
		return nil, err
	}
	return &postgres{db}, nil
}

func (pg *postgres) Ping(ctx context.Context) error {
	return pg.db.Ping(ctx)
}

func (pg *postgres) Close() {
	pg.db.Close()
}

func (pg *postgres) CreatePlayer(
	ctx context.Context, username string, passwordHash []byte,
) (*Player, error) {
	var playerId int64
	if err := pg.db.QueryRow(ctx, `
		INSERT INTO player (
			username, password_hash
		)
		VALUES (
			@username, @password_hash
		)
		RETURNING player_id`,
		pgx.NamedArgs{
			"username":      username,
			"password_hash": passwordHash,
		}).Scan(&playerId); err != nil {
		return nil, err
	}
	player := &Player{
		PlayerId: playerId,
		Username: username,
	}
	return player, nil
}

func (pg *postgres) GetPlayer(
	ctx context.Context, username string,
) (*Player, error) {
	rows, err := pg.db.Query(ctx, `
		SELECT player_id, username, password_hash
		FROM player
		WHERE username = $1;`,
		username)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Player])
}

func encodeState(state *SessionState) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pg *postgres) CreateGameSession(
	ctx context.Context, playerId *int64, state *SessionState,
) (*GameSession, error) {
	stateBytes, err := encodeState(state)
	if err != nil {
		return nil, err
	}
	var (
		gameSessionId int64
		startedAt     time.Time
	)
	if err := pg.db.QueryRow(ctx, `
		INSERT INTO game_session (
			player_id, height, width, mine_count, status, move_count, state
		)
		VALUES (
			@player_id, @height, @width, @mine_count, @status, @move_count, @state
		)
		RETURNING game_session_id, started_at;`,
		pgx.NamedArgs{
			"player_id":  playerId,
			"height":     state.Board.Height(),
			"width":      state.Board.Width(),
			"mine_count": state.Board.MineCount(),
			"status":     string(state.Status),
			"move_count": state.MoveCount,
			"state":      stateBytes,
		}).Scan(&gameSessionId, &startedAt); err != nil {
		return nil, err
	}
	session := &GameSession{
		SessionId: gameSessionId,
		PlayerId:  playerId,
		State:     *state,
		StartedAt: startedAt,
	}
	return session, nil
}

func (pg *postgres) GetSession(
	ctx context.Context, gameSessionId int64,
) (*GameSession, error) {
	var (
		stateBuf  []byte
		playerId  *int64
		state     SessionState
		startedAt time.Time
		endedAt   pgtype.Timestamptz
	)
	if err := pg.db.QueryRow(ctx, `
		SELECT player_id, state, started_at, ended_at
		FROM game_session
		WHERE game_session_id = $1;`,
		gameSessionId).Scan(
		&playerId, &stateBuf, &startedAt, &endedAt,
	); err != nil {
		return nil, err
	}
	if err := gob.NewDecoder(bytes.NewBuffer(stateBuf)).Decode(&state); err != nil {
		return nil, err
	}
	gameSession := &GameSession{
		SessionId: gameSessionId,
		PlayerId:  playerId,
		State:     state,
		StartedAt: startedAt,
		EndedAt:   endedAt.Time,
	}
	return gameSession, nil
}

func (pg *postgres) UpdateGameSession(
	ctx context.Context, gameSession *GameSession,
) error {
	stateBytes, err := encodeState(&gameSession.State)
	if err != nil {
		return err
	}
	var endedAt pgtype.Timestamptz
	if !gameSession.EndedAt.IsZero() {
		endedAt = pgtype.Timestamptz{Time: gameSession.EndedAt, Valid: true}
	}
	_, err = pg.db.Exec(ctx, `
		UPDATE game_session
		SET status = @status
			, move_count = @move_count
			, ended_at = @ended_at
			, state = @state
		WHERE game_session_id = @game_session_id;`,
		pgx.NamedArgs{
			"game_session_id": gameSession.SessionId,
			"status":          string(gameSession.State.Status),
			"move_count":      gameSession.State.MoveCount,
			"ended_at":        endedAt,
			"state":           stateBytes,
		})
	return err
}
