package notification

import "taskmate/models"

// TabMapping lists which notification categories count toward each tab
// badge. The mapping is configuration, not logic: deployments disagree on
// which categories belong to which tab, so it is injected from config.
type TabMapping struct {
	Requester []string
	Tasker    []string
}

// TabBadges carries the per-tab unread totals rendered by the UI.
type TabBadges struct {
	Requester int            `json:"requester"`
	Tasker    int            `json:"tasker"`
	PerTask   map[string]int `json:"perTask"`
}

// TabCounts sums unread records across each tab's category set, split by the
// viewing user's role on the record's task: requesterTasks are tasks the user
// posted, taskerTasks are tasks where the user is the accepted tasker. The
// per-task breakdown feeds individual list-row badges.
func (a *Aggregator) TabCounts(m TabMapping, requesterTasks, taskerTasks []string) TabBadges {
	asRequester := toSet(requesterTasks)
	asTasker := toSet(taskerTasks)
	reqCats := toSet(m.Requester)
	taskCats := toSet(m.Tasker)

	badges := TabBadges{PerTask: make(map[string]int)}
	for _, r := range a.All() {
		if r.Read {
			continue
		}
		cat := r.Category()
		if asRequester[r.TaskID] && reqCats[cat] {
			badges.Requester++
			badges.PerTask[r.TaskID]++
		}
		if asTasker[r.TaskID] && taskCats[cat] {
			badges.Tasker++
			badges.PerTask[r.TaskID]++
		}
	}
	return badges
}

// UnreadForTask counts unread records scoped to one task and category.
func (a *Aggregator) UnreadForTask(taskID, category string) int {
	return a.CountUnread(func(n models.Notification) bool {
		return n.TaskID == taskID && n.Category() == category
	})
}

// UnreadForChat counts unread chat messages for one conversation.
func (a *Aggregator) UnreadForChat(chatID string) int {
	return a.CountUnread(func(n models.Notification) bool {
		return n.Type == models.NotifTypeChat && n.ChatID == chatID
	})
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
