package memory

import (
	"context"
	"sort"

	"depot/internal/domain/settings"
)

// Settings returns the settings repository.
func (s *Store) Settings() settings.Repository { return settingsRepo{s} }

type settingsRepo struct{ s *Store }

func (r settingsRepo) ListByCategory(ctx context.Context, category string) ([]settings.Setting, error) {
	var out []settings.Setting
	err := r.s.do(ctx, func() error {
		for k, v := range r.s.st.settings[category] {
			out = append(out, settings.Setting{Category: category, Key: k, Value: v})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, err
}

func (r settingsRepo) Upsert(ctx context.Context, list []settings.Setting) error {
	for i := range list {
		if err := list[i].Validate(ctx); err != nil {
			return err
		}
	}
	return r.s.do(ctx, func() error {
		for _, st := range list {
			m, ok := r.s.st.settings[st.Category]
			if !ok {
				m = map[string]string{}
				r.s.st.settings[st.Category] = m
			}
			m[st.Key] = st.Value
		}
		return nil
	})
}
