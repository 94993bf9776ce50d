package model

import "math"

// SplitByPost partitions a dataset into train/test sets without leaking a
// post's time points across the boundary: row indices are grouped by post
// in first-seen order, kept in their original (chronological) relative
// order, and each post's first max(1, floor(0.8*count)) rows go to train
// with the remainder to test. Every post therefore contributes at least
// one training row; a single-row post contributes no test rows.
func SplitByPost(ds *Dataset) *Split {
	order := make([]string, 0)
	groups := make(map[string][]int)
	for i, meta := range ds.Meta {
		if _, seen := groups[meta.PostID]; !seen {
			order = append(order, meta.PostID)
		}
		groups[meta.PostID] = append(groups[meta.PostID], i)
	}

	split := &Split{}
	for _, postID := range order {
		rows := groups[postID]
		nTrain := int(math.Floor(0.8 * float64(len(rows))))
		if nTrain < 1 {
			nTrain = 1
		}
		for j, row := range rows {
			if j < nTrain {
				split.XTrain = append(split.XTrain, ds.X[row])
				split.YTrain = append(split.YTrain, ds.Y[row])
			} else {
				split.XTest = append(split.XTest, ds.X[row])
				split.YTest = append(split.YTest, ds.Y[row])
			}
		}
	}
	return split
}
