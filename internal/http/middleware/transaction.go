package middleware

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/sportsmap-api/internal/pkg/log"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

// rollbackTimeout ограничивает откат, выполняемый уже после отмены запроса.
const rollbackTimeout = 5 * time.Second

// TxBeginner открывает единицу работы.
type TxBeginner interface {
	Begin(ctx context.Context) (storage.Tx, error)
}

// Transaction выполняет обработчик в одной единице работы.
//
// Поведение:
//   - Begin на входе, Tx кладётся в контекст (storage.WithTx);
//   - ответ обработчика буферизуется;
//   - обработчик без ошибки и контекст жив - Commit, затем ответ
//     отправляется клиенту;
//   - ошибка обработчика, panic или отменённый контекст - Rollback
//     на контексте без отмены, буфер выбрасывается, ошибка (или panic)
//     идёт дальше;
//   - ошибка Commit возвращается как есть (500), Rollback после неё
//     не вызывается.
//
// Ровно один Commit или Rollback на запрос; вложенных транзакций нет.
func Transaction(store TxBeginner) Stage {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			const op = "middleware.transaction"

			ctx := r.Context()

			tx, err := store.Begin(ctx)
			if err != nil {
				return fmt.Errorf("%s: begin: %w", op, err)
			}

			finished := false
			defer func() {
				if finished {
					return
				}

				rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
				defer cancel()

				if err := tx.Rollback(rbCtx); err != nil {
					log.From(ctx).Warn("tx_rollback_failed", slog.String("err", err.Error()))
				}
			}()

			buf := newBufferedWriter()

			if err := next(buf, r.WithContext(storage.WithTx(ctx, tx))); err != nil {
				return err
			}

			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}

			// После Commit транзакция завершена при любом исходе.
			err = tx.Commit(ctx)
			finished = true
			if err != nil {
				return fmt.Errorf("%s: commit: %w", op, err)
			}

			if err := buf.flushTo(w); err != nil {
				log.From(ctx).Warn("response_flush_failed", slog.String("err", err.Error()))
			}

			return nil
		}
	}
}

// bufferedWriter держит ответ до фиксации транзакции.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header)}
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) flushTo(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = v
	}

	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if b.body.Len() == 0 {
		return nil
	}

	_, err := w.Write(b.body.Bytes())
	return err
}
