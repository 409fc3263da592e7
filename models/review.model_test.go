package models

import (
	"errors"
	"strings"
	"testing"
)

func TestReviewValidate(t *testing.T) {
	cases := []struct {
		name    string
		rating  int
		comment string
		wantErr error
	}{
		{name: "valid", rating: 3, comment: "solid purchase"},
		{name: "minimum rating", rating: 1, comment: "meh"},
		{name: "maximum rating", rating: 5, comment: "great"},
		{name: "rating too low", rating: 0, comment: "x", wantErr: ErrInvalidRating},
		{name: "rating too high", rating: 6, comment: "x", wantErr: ErrInvalidRating},
		{name: "missing comment", rating: 3, comment: "", wantErr: ErrCommentMissing},
		{name: "comment too long", rating: 3, comment: strings.Repeat("a", 1001), wantErr: ErrCommentTooLong},
		{name: "comment at limit", rating: 3, comment: strings.Repeat("a", 1000)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Review{Rating: tc.rating, Comment: tc.comment}
			err := r.Validate()
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	if s := Summarize(nil); s.TotalCount != 0 || s.AverageRating != 0 {
		t.Errorf("empty set must summarize to zero, got %+v", s)
	}

	reviews := []Review{{Rating: 5}, {Rating: 4}, {Rating: 3}}
	s := Summarize(reviews)
	if s.TotalCount != 3 {
		t.Errorf("expected count 3, got %d", s.TotalCount)
	}
	if s.AverageRating != 4 {
		t.Errorf("expected average 4, got %v", s.AverageRating)
	}
}
