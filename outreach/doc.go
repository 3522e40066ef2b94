// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package outreach helps a student contact faculty found through retrieval.
//
// It covers the whole lifecycle of one email:
//
//   - Drafter asks an ai.Generator for a professional email built from the
//     student's details and goal.
//   - SuggestSendTime and Planner.PlanFollowup pick when to send and when to
//     follow up.
//   - MailtoLink and GmailLink turn a draft into compose links.
//   - Log records each sent email in a storage.OutreachRepository and answers
//     which follow-ups are due.
//   - Reminder polls the log on a schedule and reports due follow-ups.
//
// Example:
//
//	drafter, _ := outreach.NewDrafter(provider.Generator())
//	body, err := drafter.Draft(ctx, outreach.DraftRequest{
//		StudentName:   "Asha",
//		ProfessorName: "Rao",
//		Goal:          "Research Internship",
//	})
package outreach
