package docrepos

import (
	"context"
	"time"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
)

type accountRepository struct {
	store core.Store // nil when tx-bound
	db    core.Tx
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(store core.Store) account.Repository {
	return &accountRepository{store: store, db: store}
}

func (r *accountRepository) Atomic(ctx context.Context, fn func(account.Repository) error) error {
	if r.store == nil {
		return fn(r)
	}
	return core.RunInTx(ctx, r.store, func(ctx context.Context, tx core.Tx) error {
		return fn(&accountRepository{db: tx})
	})
}

func (r *accountRepository) GetProfile(ctx context.Context, uid string) (account.Profile, error) {
	return getProfile(ctx, r.db, uid)
}

func (r *accountRepository) SaveProfile(ctx context.Context, p account.Profile) (account.Profile, error) {
	return saveProfile(ctx, r.db, p)
}

func (r *accountRepository) QueryProfilesByRole(ctx context.Context, role authz.Role) ([]account.Profile, error) {
	docs, err := r.db.Query(ctx, core.ColUserProfiles, core.Filter{"role": role})
	if err != nil {
		return nil, err
	}
	profiles := make([]account.Profile, 0, len(docs))
	for _, doc := range docs {
		var p account.Profile
		if err = decode(doc, &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// shared with the school repository: cascades touch profiles too

func getProfile(ctx context.Context, db core.Tx, uid string) (account.Profile, error) {
	doc, err := db.Get(ctx, core.ColUserProfiles, uid)
	if err != nil {
		if err == core.ErrDocNotFound {
			return account.Profile{}, account.ErrNotFound
		}
		return account.Profile{}, err
	}
	var p account.Profile
	return p, decode(doc, &p)
}

// saveProfile upserts by uid; the uid is the document ID.
func saveProfile(ctx context.Context, db core.Tx, p account.Profile) (account.Profile, error) {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = nonDecreasing(p.UpdatedAt, now)
	return p, putDoc(ctx, db, core.ColUserProfiles, p.UID, p)
}
