package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProfile_ExperienceIndex(t *testing.T) {
	t.Parallel()

	p := &Profile{Experience: []Experience{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	tests := []struct {
		id   string
		want int
	}{
		{"a", 0},
		{"c", 2},
		{"missing", -1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := p.ExperienceIndex(tt.id); got != tt.want {
			t.Errorf("ExperienceIndex(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestProfile_EducationIndex(t *testing.T) {
	t.Parallel()

	p := &Profile{Education: []Education{{ID: "x"}, {ID: "y"}}}

	if got := p.EducationIndex("x"); got != 0 {
		t.Errorf("EducationIndex(x) = %d, want 0", got)
	}
	if got := p.EducationIndex("z"); got != -1 {
		t.Errorf("EducationIndex(z) = %d, want -1", got)
	}
	if got := (&Profile{}).EducationIndex("x"); got != -1 {
		t.Errorf("EducationIndex on empty profile = %d, want -1", got)
	}
}

func TestPost_LikedBy(t *testing.T) {
	t.Parallel()

	p := &Post{Likes: []Like{{UserID: "u1"}, {UserID: "u2"}}}

	if !p.LikedBy("u2") {
		t.Error("LikedBy(u2) = false, want true")
	}
	if p.LikedBy("u3") {
		t.Error("LikedBy(u3) = true, want false")
	}
}

func TestPost_Comment(t *testing.T) {
	t.Parallel()

	p := &Post{Comments: []Comment{{ID: "c1", UserID: "u1"}, {ID: "c2", UserID: "u2"}}}

	c := p.Comment("c2")
	if c == nil || c.OwnerID() != "u2" {
		t.Fatalf("Comment(c2) = %+v, want comment owned by u2", c)
	}
	if p.Comment("missing") != nil {
		t.Error("Comment(missing) should be nil")
	}
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	t.Parallel()

	u := User{ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "$argon2id$secret"}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "argon2id") {
		t.Errorf("serialized user contains password hash: %s", data)
	}
}

func TestOwnerIDs(t *testing.T) {
	t.Parallel()

	if got := (&Profile{UserID: "u1"}).OwnerID(); got != "u1" {
		t.Errorf("Profile.OwnerID() = %s, want u1", got)
	}
	if got := (&Post{UserID: "u2"}).OwnerID(); got != "u2" {
		t.Errorf("Post.OwnerID() = %s, want u2", got)
	}
}
