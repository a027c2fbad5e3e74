package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q anywhere, with LIKE
// wildcards in q taken literally.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func situationColumns(extra ...interface{}) []interface{} {
	cols := []interface{}{
		goqu.I("s.situation_id"),
		goqu.I("s.situation_text"),
		goqu.I("s.response_text"),
		goqu.I("s.verses"),
		goqu.I("s.tags"),
		goqu.I("s.datetime_create"),
		goqu.L("COALESCE(AVG(r.stars), 0)::float").As("average_rating"),
		goqu.L("COUNT(r.rating_id)::int").As("rating_count"),
	}
	return append(cols, extra...)
}

// situationsSelect selects situations with their rating aggregates.
func (s *Store) situationsSelect(extra ...interface{}) *goqu.SelectDataset {
	return s.db.From(goqu.T("situation").As("s")).
		LeftJoin(
			goqu.T("situation_rating").As("r"),
			goqu.On(goqu.I("r.situation_id").Eq(goqu.I("s.situation_id"))),
		).
		Select(situationColumns(extra...)...).
		GroupBy(goqu.I("s.situation_id"))
}

func searchFilter(q string) exp.Expression {
	pattern := containsPattern(q)
	return goqu.Or(
		goqu.I("s.situation_text").ILike(pattern),
		goqu.I("s.response_text").ILike(pattern),
		goqu.L("array_to_string(s.tags, ' ') ILIKE ?", pattern),
	)
}

func sortOrder(sort models.SortOrder) []exp.OrderedExpression {
	created := goqu.I("s.datetime_create").Desc()
	avg := goqu.I("average_rating").Desc()
	count := goqu.I("rating_count").Desc()
	id := goqu.I("s.situation_id").Desc()
	switch sort {
	case models.SortTopRated:
		return []exp.OrderedExpression{avg, count, created, id}
	case models.SortMostRated:
		return []exp.OrderedExpression{count, avg, created, id}
	default:
		return []exp.OrderedExpression{created, id}
	}
}

// ListSituations returns one page of situations. When the requested page is
// past the end, the item query is skipped and only the totals are returned.
func (s *Store) ListSituations(ctx context.Context, params models.ListParams) (models.Page[models.Situation], error) {
	var filters []exp.Expression
	if q := strings.TrimSpace(params.Query); q != "" {
		filters = append(filters, searchFilter(q))
	}
	return s.pageSituations(ctx, params, filters...)
}

func (s *Store) pageSituations(ctx context.Context, params models.ListParams, filters ...exp.Expression) (models.Page[models.Situation], error) {
	total, err := s.db.From(goqu.T("situation").As("s")).
		Where(filters...).
		CountContext(ctx)
	if err != nil {
		return models.Page[models.Situation]{}, wrap("count situations", err)
	}

	situations := []models.Situation{}
	if !params.PastEnd(total) {
		err = s.situationsSelect().
			Where(filters...).
			Order(sortOrder(params.Sort)...).
			Limit(uint(params.PageSize)).
			Offset(uint(params.Offset())).
			ScanStructsContext(ctx, &situations)
		if err != nil {
			return models.Page[models.Situation]{}, wrap("list situations", err)
		}
	}

	return models.NewPage(situations, total, params), nil
}

func (s *Store) GetSituation(ctx context.Context, id int) (models.Situation, error) {
	var situation models.Situation
	found, err := s.situationsSelect().
		Where(goqu.I("s.situation_id").Eq(id)).
		ScanStructContext(ctx, &situation)
	if err != nil {
		return models.Situation{}, wrap("get situation", err)
	}
	if !found {
		return models.Situation{}, apperrors.ErrNotFound
	}
	return situation, nil
}

// SituationCandidates returns every stored situation text, most recent first.
func (s *Store) SituationCandidates(ctx context.Context) ([]models.SituationCandidate, error) {
	candidates := []models.SituationCandidate{}
	err := s.db.From("situation").
		Select("situation_id", "situation_text").
		Order(goqu.C("datetime_create").Desc(), goqu.C("situation_id").Desc()).
		ScanStructsContext(ctx, &candidates)
	if err != nil {
		return nil, wrap("list situation candidates", err)
	}
	return candidates, nil
}

func (s *Store) CreateSituation(ctx context.Context, text string, guidance models.Guidance) (models.Situation, error) {
	verses := guidance.Verses
	if verses == nil {
		verses = []string{}
	}
	tags := guidance.Tags
	if tags == nil {
		tags = []string{}
	}

	var created models.Situation
	_, err := s.db.Insert("situation").
		Rows(goqu.Record{
			"situation_text": text,
			"response_text":  guidance.Response,
			"verses":         pq.StringArray(verses),
			"tags":           pq.StringArray(tags),
		}).
		Returning("situation_id", "situation_text", "response_text", "verses", "tags", "datetime_create").
		Executor().
		ScanStructContext(ctx, &created)
	if err != nil {
		return models.Situation{}, wrap("create situation", err)
	}
	return created, nil
}

// RelatedSituations returns up to limit situations matching keyword,
// excluding the situation with id exclude.
func (s *Store) RelatedSituations(ctx context.Context, exclude int, keyword string, limit int) ([]models.Situation, error) {
	related := []models.Situation{}
	err := s.situationsSelect().
		Where(searchFilter(keyword), goqu.I("s.situation_id").Neq(exclude)).
		Order(sortOrder(models.SortRecent)...).
		Limit(uint(limit)).
		ScanStructsContext(ctx, &related)
	if err != nil {
		return nil, wrap("related situations", err)
	}
	return related, nil
}
