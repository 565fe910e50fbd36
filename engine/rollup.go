/*
rollup.go - Project → Department → Organisation hierarchy aggregation

PURPOSE:
  Sums project-level month buckets into department-level buckets, and
  department-level buckets into organisation-level buckets. Revenue and
  cost are summed; margin is recomputed at each level from that level's
  own revenue and cost.

PRIMARY CORRECTNESS PROPERTY:
  For any fixed yearMonth, sum(orgBucket.Revenue) equals
  sum(projectBucket.Revenue) exactly. The rollup only adds the same
  decimals in a different grouping, so no epsilon is involved.

DEPARTMENT MEMBERSHIP:
  A project's buckets roll into whatever department the project is linked
  to at query time. There is no point-in-time department snapshot, so a
  reassigned project moves its full history to the new department. This
  matches the observed upstream behavior and is accepted as a documented
  limitation.
*/
package engine

import "sort"

// Rollup aggregates project buckets into department and organisation
// buckets. deptOf and orgOf resolve current hierarchy links; buckets whose
// project or department cannot be resolved are skipped at that level.
// Output ordering is deterministic (entity id, then month) so repeated
// runs over the same snapshot are bit-identical.
func Rollup(
	projectBuckets []MonthBucket,
	deptOf func(ProjectID) (DeptID, bool),
	orgOf func(DeptID) (OrgID, bool),
) (deptBuckets, orgBuckets []MonthBucket) {
	type bucketKey struct {
		id    string
		month YearMonth
	}

	deptSums := make(map[bucketKey]*MonthBucket)
	orgSums := make(map[bucketKey]*MonthBucket)

	accumulate := func(sums map[bucketKey]*MonthBucket, et EntityType, id string, src MonthBucket) {
		k := bucketKey{id: id, month: src.Month}
		b, ok := sums[k]
		if !ok {
			b = &MonthBucket{EntityType: et, EntityID: id, Month: src.Month, Revenue: ZeroMoney(), Cost: ZeroMoney()}
			sums[k] = b
		}
		b.Revenue = b.Revenue.Add(src.Revenue)
		b.Cost = b.Cost.Add(src.Cost)
	}

	for _, pb := range projectBuckets {
		deptID, ok := deptOf(ProjectID(pb.EntityID))
		if !ok {
			continue
		}
		accumulate(deptSums, EntityDept, string(deptID), pb)

		orgID, ok := orgOf(deptID)
		if !ok {
			continue
		}
		accumulate(orgSums, EntityOrg, string(orgID), pb)
	}

	return sortedBuckets(deptSums), sortedBuckets(orgSums)
}

func sortedBuckets[K comparable](sums map[K]*MonthBucket) []MonthBucket {
	buckets := make([]MonthBucket, 0, len(sums))
	for _, b := range sums {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].EntityID != buckets[j].EntityID {
			return buckets[i].EntityID < buckets[j].EntityID
		}
		return buckets[i].Month.Before(buckets[j].Month)
	})
	return buckets
}
